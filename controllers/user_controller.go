package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursehub/e-learning-backend/models"
)

// GET /api/admin/users
func AdminGetUsers(c *gin.Context) {
	db := dbFrom(c)

	query := db.Model(&models.User{})

	if search := c.Query("search"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
	}
	if role := c.Query("role"); role != "" && role != "all" {
		query = query.Where("role = ?", role)
	}
	query = applyDateRange(c, query, "created_at")

	sortOrder := "created_at DESC"
	switch c.Query("sort") {
	case "created_at_asc":
		sortOrder = "created_at ASC"
	case "name_asc":
		sortOrder = "name ASC"
	case "name_desc":
		sortOrder = "name DESC"
	}

	page, limit := parsePagination(c, 10)
	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.
		Order(sortOrder).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       users,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	})
}

// GET /api/admin/users/:id
func AdminGetUserDetail(c *gin.Context) {
	db := dbFrom(c)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	var enrollmentsCount, coursesCount, transactionsCount int64
	db.Model(&models.Enrollment{}).Where("user_id = ?", user.ID).Count(&enrollmentsCount)
	db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&transactionsCount)
	if user.Role == models.RoleInstructor {
		db.Model(&models.Course{}).Where("user_id = ?", user.ID).Count(&coursesCount)
	}

	var recentTransactions []models.Transaction
	db.Where("user_id = ?", user.ID).
		Preload("Course").
		Order("created_at DESC").
		Limit(10).
		Find(&recentTransactions)

	c.JSON(http.StatusOK, gin.H{
		"user": user,
		"stats": gin.H{
			"enrollments_count":  enrollmentsCount,
			"courses_count":      coursesCount,
			"transactions_count": transactionsCount,
		},
		"recent_transactions": recentTransactions,
		"tab":                 c.DefaultQuery("tab", "overview"),
	})
}
