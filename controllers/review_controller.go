package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursehub/e-learning-backend/models"
)

type ReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// POST /api/user/courses/:id/reviews
//
// Only enrolled students may review, one review per course. New reviews
// stay hidden until an admin approves them.
func CreateReview(c *gin.Context) {
	db := dbFrom(c)

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return
	}

	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	var enrolled int64
	db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, course.ID).
		Count(&enrolled)
	if enrolled == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "you must be enrolled to review this course"})
		return
	}

	var existing int64
	db.Model(&models.Review{}).
		Where("user_id = ? AND course_id = ?", userID, course.ID).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "you have already reviewed this course"})
		return
	}

	review := models.Review{
		CourseID: course.ID,
		UserID:   userID,
		Rating:   input.Rating,
		Comment:  input.Comment,
	}
	if err := db.Create(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create review"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "review submitted for approval",
		"review":  review,
	})
}

// GET /api/admin/reviews
func AdminGetReviews(c *gin.Context) {
	db := dbFrom(c)

	query := db.Model(&models.Review{})
	switch c.DefaultQuery("status", "pending") {
	case "approved":
		query = query.Where("is_approved = ?", true)
	case "all":
	default:
		query = query.Where("is_approved = ?", false)
	}

	page, limit := parsePagination(c, 10)
	var total int64
	query.Count(&total)

	var reviews []models.Review
	if err := query.
		Preload("User").
		Preload("Course").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       reviews,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	})
}

// PATCH /api/admin/reviews/:id/approve
func ApproveReview(c *gin.Context) {
	db := dbFrom(c)

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	var review models.Review
	if err := db.First(&review, "id = ?", reviewID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}

	review.IsApproved = true
	if err := db.Save(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not approve review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "review approved",
		"review":  review,
	})
}

// PATCH /api/admin/reviews/:id/unapprove
func UnapproveReview(c *gin.Context) {
	db := dbFrom(c)

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	var review models.Review
	if err := db.First(&review, "id = ?", reviewID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}

	review.IsApproved = false
	if err := db.Save(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "review unapproved",
		"review":  review,
	})
}

// DELETE /api/admin/reviews/:id
func AdminDeleteReview(c *gin.Context) {
	db := dbFrom(c)

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	var review models.Review
	if err := db.First(&review, "id = ?", reviewID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}

	if err := db.Delete(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
}
