package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Slug             string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	ShortDescription string    `gorm:"type:text" json:"short_description"`
	Description      string    `gorm:"type:text" json:"description"`
	Thumbnail        string    `gorm:"type:text" json:"thumbnail"`
	Price            float64   `gorm:"not null;default:0" json:"price"`
	Level            string    `gorm:"size:50" json:"level"` // beginner | intermediate | advanced
	CategoryID       uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	IsPublished      bool      `gorm:"default:false" json:"is_published"`
	IsApproved       bool      `gorm:"default:false" json:"is_approved"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Category    Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	User        User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Lessons     []Lesson     `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE;" json:"lessons,omitempty"`
	Reviews     []Review     `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE;" json:"reviews,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:CourseID" json:"enrollments,omitempty"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
