package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursehub/e-learning-backend/models"
)

// GET /api/user/wishlist
func GetWishlist(c *gin.Context) {
	db := dbFrom(c)

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return
	}

	var items []models.Wishlist
	if err := db.Where("user_id = ?", userID).
		Preload("Course").
		Preload("Course.Category").
		Preload("Course.User").
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

// POST /api/user/wishlist/:courseId
func AddToWishlist(c *gin.Context) {
	db := dbFrom(c)

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return
	}

	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ? AND is_published = ? AND is_approved = ?", courseID, true, true).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	item := models.Wishlist{UserID: userID, CourseID: course.ID}
	var existing models.Wishlist
	err = db.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"message": "course already in wishlist"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update wishlist"})
		return
	}

	if err := db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update wishlist"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "course added to wishlist"})
}

// DELETE /api/user/wishlist/:courseId
func RemoveFromWishlist(c *gin.Context) {
	db := dbFrom(c)

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return
	}

	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	result := db.Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&models.Wishlist{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update wishlist"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not in wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "course removed from wishlist"})
}
