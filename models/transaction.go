package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
	TransactionRefunded  = "refunded"
)

type Transaction struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	CourseID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"course_id"`
	PromoCodeID    *uuid.UUID `gorm:"type:uuid" json:"promo_code_id,omitempty"`
	Amount         float64    `gorm:"not null" json:"amount"`
	DiscountAmount float64    `gorm:"default:0" json:"discount_amount"`
	TaxAmount      float64    `gorm:"default:0" json:"tax_amount"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentMethod  string     `gorm:"size:50" json:"payment_method"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User      User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course    Course     `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	PromoCode *PromoCode `gorm:"foreignKey:PromoCodeID" json:"promo_code,omitempty"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
