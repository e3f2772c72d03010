package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursehub/e-learning-backend/models"
)

func adminCourseSort(key string) string {
	switch key {
	case "created_at_asc":
		return "created_at ASC"
	case "title_asc":
		return "title ASC"
	case "title_desc":
		return "title DESC"
	case "price_asc":
		return "price ASC"
	case "price_desc":
		return "price DESC"
	default:
		return "created_at DESC"
	}
}

// GET /api/admin/courses
func AdminGetCourses(c *gin.Context) {
	db := dbFrom(c)

	query := db.Model(&models.Course{})

	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if category := c.Query("category"); category != "" && category != "all" {
		if id, err := uuid.Parse(category); err == nil {
			query = query.Where("category_id = ?", id)
		}
	}
	switch c.Query("status") {
	case "published":
		query = query.Where("is_published = ? AND is_approved = ?", true, true)
	case "pending":
		query = query.Where("is_published = ? AND is_approved = ?", true, false)
	case "draft":
		query = query.Where("is_published = ?", false)
	}
	query = applyDateRange(c, query, "created_at")

	page, limit := parsePagination(c, 10)
	var total int64
	query.Count(&total)

	var courses []models.Course
	if err := query.
		Preload("Category").
		Preload("User").
		Order(adminCourseSort(c.DefaultQuery("sort", "created_at_desc"))).
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

// PATCH /api/admin/courses/:id/approve
func ApproveCourse(c *gin.Context) {
	db := dbFrom(c)

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	course.IsApproved = true
	if err := db.Save(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not approve course"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "course approved",
		"course":  course,
	})
}

// PATCH /api/admin/courses/:id/toggle-publish
func ToggleCoursePublish(c *gin.Context) {
	db := dbFrom(c)

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	course.IsPublished = !course.IsPublished
	if err := db.Save(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update course"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "course updated",
		"course":  course,
	})
}

// DELETE /api/admin/courses/:id
func AdminDeleteCourse(c *gin.Context) {
	db := dbFrom(c)

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	var enrollments int64
	db.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrollments)
	if enrollments > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course has enrollments and cannot be deleted"})
		return
	}

	if err := db.Select("Lessons", "Reviews").Delete(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete course"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "course deleted"})
}
