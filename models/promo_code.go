package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// PromoCode stops being applicable once end_date passes or used_count
// reaches max_uses. used_count is incremented at order finalization.
type PromoCode struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Code          string     `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Description   string     `gorm:"type:text" json:"description"`
	DiscountType  string     `gorm:"type:varchar(20);not null;default:'percent'" json:"discount_type"`
	DiscountValue float64    `gorm:"not null" json:"discount_value"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	StartDate     time.Time  `gorm:"not null" json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	MinCartValue  *float64   `json:"min_cart_value,omitempty"`
	MaxUses       *int       `json:"max_uses,omitempty"`
	UsedCount     int        `gorm:"default:0" json:"used_count"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *PromoCode) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
