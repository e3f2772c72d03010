package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursehub/e-learning-backend/models"
)

// GET /api/instructor/courses/:id/lessons
func InstructorGetLessons(c *gin.Context) {
	db := dbFrom(c)

	course, ok := loadOwnCourse(c)
	if !ok {
		return
	}

	var lessons []models.Lesson
	if err := db.Where("course_id = ?", course.ID).
		Order("sort_order ASC").
		Find(&lessons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load lessons"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"course":  course,
		"lessons": lessons,
	})
}

type LessonInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	Duration    int    `json:"duration"`
	IsPreview   bool   `json:"is_preview"`
}

// POST /api/instructor/courses/:id/lessons
//
// New lessons go to the end of the course.
func InstructorCreateLesson(c *gin.Context) {
	db := dbFrom(c)

	course, ok := loadOwnCourse(c)
	if !ok {
		return
	}

	var input LessonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var maxOrder int
	db.Model(&models.Lesson{}).
		Where("course_id = ?", course.ID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&maxOrder)

	lesson := models.Lesson{
		CourseID:    course.ID,
		Title:       input.Title,
		Description: input.Description,
		VideoURL:    input.VideoURL,
		Duration:    input.Duration,
		SortOrder:   maxOrder + 1,
		IsPreview:   input.IsPreview,
	}

	if err := db.Create(&lesson).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create lesson"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "lesson created",
		"lesson":  lesson,
	})
}

// loadOwnLesson resolves the :lessonId param to a lesson belonging to a
// course owned by the current instructor.
func loadOwnLesson(c *gin.Context) (*models.Lesson, bool) {
	db := dbFrom(c)

	course, ok := loadOwnCourse(c)
	if !ok {
		return nil, false
	}

	lessonID, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return nil, false
	}

	var lesson models.Lesson
	if err := db.First(&lesson, "id = ? AND course_id = ?", lessonID, course.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		return nil, false
	}
	return &lesson, true
}

// PUT /api/instructor/courses/:id/lessons/:lessonId
func InstructorUpdateLesson(c *gin.Context) {
	db := dbFrom(c)

	lesson, ok := loadOwnLesson(c)
	if !ok {
		return
	}

	var input LessonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lesson.Title = input.Title
	lesson.Description = input.Description
	lesson.VideoURL = input.VideoURL
	lesson.Duration = input.Duration
	lesson.IsPreview = input.IsPreview

	if err := db.Save(lesson).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update lesson"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "lesson updated",
		"lesson":  lesson,
	})
}

// DELETE /api/instructor/courses/:id/lessons/:lessonId
func InstructorDeleteLesson(c *gin.Context) {
	db := dbFrom(c)

	lesson, ok := loadOwnLesson(c)
	if !ok {
		return
	}

	if err := db.Delete(lesson).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete lesson"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "lesson deleted"})
}

type ReorderLessonsInput struct {
	Lessons []struct {
		ID    string `json:"id" binding:"required"`
		Order int    `json:"order" binding:"required"`
	} `json:"lessons" binding:"required"`
}

// PATCH /api/instructor/courses/:id/lessons/reorder
//
// Applies the full new ordering in one transaction so a failed update
// never leaves the course half-reordered.
func InstructorReorderLessons(c *gin.Context) {
	db := dbFrom(c)

	course, ok := loadOwnCourse(c)
	if !ok {
		return
	}

	var input ReorderLessonsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, item := range input.Lessons {
			lessonID, err := uuid.Parse(item.ID)
			if err != nil {
				return err
			}
			if err := tx.Model(&models.Lesson{}).
				Where("id = ? AND course_id = ?", lessonID, course.ID).
				UpdateColumn("sort_order", item.Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not reorder lessons"})
		return
	}

	var lessons []models.Lesson
	db.Where("course_id = ?", course.ID).Order("sort_order ASC").Find(&lessons)

	c.JSON(http.StatusOK, gin.H{
		"message": "lessons reordered",
		"lessons": lessons,
	})
}
