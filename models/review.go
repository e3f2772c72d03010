package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_course_user" json:"course_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_course_user" json:"user_id"`
	Rating     int       `gorm:"not null" json:"rating"` // 1..5
	Comment    string    `gorm:"type:text" json:"comment"`
	IsApproved bool      `gorm:"default:false" json:"is_approved"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
