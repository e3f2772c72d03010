package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleInstructor UserRole = "instructor"
	RoleStudent    UserRole = "student"
)

type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string    `gorm:"size:150;not null" json:"name"`
	Email            string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password         string    `gorm:"type:text;not null" json:"-"`
	Role             UserRole  `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	Bio              string    `gorm:"type:text" json:"bio"`
	ProfilePhotoPath string    `gorm:"type:text" json:"profile_photo_path"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Courses     []Course     `gorm:"foreignKey:UserID" json:"courses,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:UserID" json:"enrollments,omitempty"`
	Wishlists   []Wishlist   `gorm:"foreignKey:UserID" json:"wishlists,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
