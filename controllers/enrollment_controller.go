package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursehub/e-learning-backend/models"
)

// GET /api/user/courses
func GetMyCourses(c *gin.Context) {
	db := dbFrom(c)

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return
	}

	var enrollments []models.Enrollment
	if err := db.Where("user_id = ?", userID).
		Preload("Course").
		Preload("Course.Category").
		Preload("Course.User").
		Order("created_at DESC").
		Find(&enrollments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load enrollments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": enrollments})
}

// loadOwnEnrollment resolves the :id route param to an enrollment of the
// current user by course id.
func loadOwnEnrollment(c *gin.Context) (*models.Enrollment, bool) {
	db := dbFrom(c)

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return nil, false
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return nil, false
	}

	var enrollment models.Enrollment
	if err := db.First(&enrollment, "user_id = ? AND course_id = ?", userID, courseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "enrollment not found"})
		return nil, false
	}
	return &enrollment, true
}

// GET /api/user/courses/:id
//
// The learning view: lessons in order plus the student's progress.
func GetEnrolledCourse(c *gin.Context) {
	db := dbFrom(c)

	enrollment, ok := loadOwnEnrollment(c)
	if !ok {
		return
	}

	var course models.Course
	if err := db.
		Preload("Category").
		Preload("User").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.sort_order ASC")
		}).
		First(&course, "id = ?", enrollment.CourseID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load course"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"course":     course,
		"enrollment": enrollment,
	})
}

type ProgressInput struct {
	Progress float64 `json:"progress" binding:"min=0,max=100"`
}

// PATCH /api/user/courses/:id/progress
func UpdateProgress(c *gin.Context) {
	db := dbFrom(c)

	enrollment, ok := loadOwnEnrollment(c)
	if !ok {
		return
	}

	var input ProgressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// progress never moves backwards
	if input.Progress > enrollment.Progress {
		enrollment.Progress = input.Progress
	}
	if enrollment.Progress >= 100 && enrollment.CompletedAt == nil {
		now := time.Now()
		enrollment.CompletedAt = &now
	}

	if err := db.Save(enrollment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "progress updated",
		"enrollment": enrollment,
	})
}
