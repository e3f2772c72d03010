package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursehub/e-learning-backend/models"
)

// GET /api/user/courses/:id/notes
func GetNotes(c *gin.Context) {
	db := dbFrom(c)

	enrollment, ok := loadOwnEnrollment(c)
	if !ok {
		return
	}

	var notes []models.Note
	if err := db.Where("user_id = ? AND course_id = ?", enrollment.UserID, enrollment.CourseID).
		Order("created_at DESC").
		Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load notes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notes})
}

type NoteInput struct {
	Content string `json:"content" binding:"required"`
}

// POST /api/user/courses/:id/notes
func CreateNote(c *gin.Context) {
	db := dbFrom(c)

	enrollment, ok := loadOwnEnrollment(c)
	if !ok {
		return
	}

	var input NoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note := models.Note{
		UserID:   enrollment.UserID,
		CourseID: enrollment.CourseID,
		Content:  input.Content,
	}
	if err := db.Create(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create note"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "note created",
		"note":    note,
	})
}

// DELETE /api/user/notes/:id
func DeleteNote(c *gin.Context) {
	db := dbFrom(c)

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note id"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return
	}

	result := db.Where("id = ? AND user_id = ?", noteID, userID).Delete(&models.Note{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete note"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "note deleted"})
}
