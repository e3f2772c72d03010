package models

import (
	"time"

	"github.com/google/uuid"
)

type Wishlist struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"course_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User   User   `gorm:"constraint:OnDelete:CASCADE;" json:"user,omitempty"`
	Course Course `gorm:"constraint:OnDelete:CASCADE;" json:"course,omitempty"`
}
