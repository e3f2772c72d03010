package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/coursehub/e-learning-backend/models"
)

// uniqueCourseSlug derives a slug from the title, appending a counter when
// the plain slug is taken.
func uniqueCourseSlug(db *gorm.DB, title string, excludeID uuid.UUID) string {
	base := slug.Make(title)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		db.Model(&models.Course{}).
			Where("slug = ? AND id <> ?", candidate, excludeID).
			Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// loadOwnCourse resolves the :id route param to a course owned by the
// current instructor.
func loadOwnCourse(c *gin.Context) (*models.Course, bool) {
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

	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return nil, false
	}
	if course.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not own this course"})
		return nil, false
	}
	return &course, true
}

// GET /api/instructor/courses
func InstructorGetCourses(c *gin.Context) {
	db := dbFrom(c)

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return
	}

	query := db.Model(&models.Course{}).Where("user_id = ?", userID)
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	page, limit := parsePagination(c, 10)
	var total int64
	query.Count(&total)

	var courses []models.Course
	if err := query.
		Preload("Category").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load courses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       courses,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	})
}

// Price is a pointer so an omitted field can be told apart from an
// explicit 0 (making a course free).
type CourseInput struct {
	Title            string   `json:"title" binding:"required"`
	ShortDescription string   `json:"short_description"`
	Description      string   `json:"description"`
	Thumbnail        string   `json:"thumbnail"`
	Price            *float64 `json:"price" binding:"omitempty,gte=0"`
	Level            string   `json:"level"`
	CategoryID       string   `json:"category_id" binding:"required"`
}

// POST /api/instructor/courses
func InstructorCreateCourse(c *gin.Context) {
	db := dbFrom(c)

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return
	}

	var input CourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categoryID, err := uuid.Parse(input.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
		return
	}
	var category models.Category
	if err := db.First(&category, "id = ?", categoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category not found"})
		return
	}

	course := models.Course{
		Title:            input.Title,
		Slug:             uniqueCourseSlug(db, input.Title, uuid.Nil),
		ShortDescription: input.ShortDescription,
		Description:      input.Description,
		Thumbnail:        input.Thumbnail,
		Level:            input.Level,
		CategoryID:       categoryID,
		UserID:           userID,
	}
	if input.Price != nil {
		course.Price = *input.Price
	}

	if err := db.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create course"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "course created",
		"course":  course,
	})
}

// PUT /api/instructor/courses/:id
func InstructorUpdateCourse(c *gin.Context) {
	db := dbFrom(c)

	course, ok := loadOwnCourse(c)
	if !ok {
		return
	}

	var input CourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Title != "" && input.Title != course.Title {
		course.Title = input.Title
		course.Slug = uniqueCourseSlug(db, input.Title, course.ID)
	}
	if input.ShortDescription != "" {
		course.ShortDescription = input.ShortDescription
	}
	if input.Description != "" {
		course.Description = input.Description
	}
	if input.Thumbnail != "" {
		course.Thumbnail = input.Thumbnail
	}
	if input.Price != nil {
		course.Price = *input.Price
	}
	if input.Level != "" {
		course.Level = input.Level
	}
	if input.CategoryID != "" {
		categoryID, err := uuid.Parse(input.CategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		course.CategoryID = categoryID
	}

	if err := db.Save(course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update course"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "course updated",
		"course":  course,
	})
}

// PATCH /api/instructor/courses/:id/publish
//
// Publishing submits the course for approval; it only becomes publicly
// visible once an admin approves it.
func InstructorPublishCourse(c *gin.Context) {
	db := dbFrom(c)

	course, ok := loadOwnCourse(c)
	if !ok {
		return
	}

	course.IsPublished = true
	if err := db.Save(course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not publish course"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "course submitted for approval",
		"course":  course,
	})
}
