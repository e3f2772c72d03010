package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enrollment links a student to a course. The unique (user_id, course_id)
// index is the authoritative duplicate-enrollment guard; checkout only
// pre-checks it.
type Enrollment struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	CourseID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course" json:"course_id"`
	Progress    float64    `gorm:"default:0" json:"progress"` // 0..100
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
