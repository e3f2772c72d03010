package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursehub/e-learning-backend/models"
)

type PromoCodeInput struct {
	Code          string   `json:"code" binding:"required"`
	Description   string   `json:"description"`
	DiscountType  string   `json:"discount_type" binding:"required,oneof=percent fixed"`
	DiscountValue float64  `json:"discount_value" binding:"required,gt=0"`
	StartDate     string   `json:"start_date" binding:"required"`
	EndDate       *string  `json:"end_date"`
	MinCartValue  *float64 `json:"min_cart_value"`
	MaxUses       *int     `json:"max_uses"`
}

// GET /api/admin/promo-codes
func AdminGetPromoCodes(c *gin.Context) {
	db := dbFrom(c)

	query := db.Model(&models.PromoCode{})
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(code) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	switch c.Query("status") {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	page, limit := parsePagination(c, 10)
	var total int64
	query.Count(&total)

	var codes []models.PromoCode
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&codes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load promo codes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       codes,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	})
}

// POST /api/admin/promo-codes
func AdminCreatePromoCode(c *gin.Context) {
	db := dbFrom(c)

	var input PromoCodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	var count int64
	db.Model(&models.PromoCode{}).Where("code = ?", code).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "promo code already exists"})
		return
	}

	startDate, err := time.Parse("2006-01-02", input.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	var endDate *time.Time
	if input.EndDate != nil && *input.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", *input.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}
		endDate = &parsed
	}

	promo := models.PromoCode{
		Code:          code,
		Description:   input.Description,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		IsActive:      true,
		StartDate:     startDate,
		EndDate:       endDate,
		MinCartValue:  input.MinCartValue,
		MaxUses:       input.MaxUses,
	}
	if err := db.Create(&promo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create promo code"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "promo code created",
		"promo_code": promo,
	})
}

// PATCH /api/admin/promo-codes/:id/toggle-active
func AdminTogglePromoCode(c *gin.Context) {
	db := dbFrom(c)

	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid promo code id"})
		return
	}

	var promo models.PromoCode
	if err := db.First(&promo, "id = ?", promoID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "promo code not found"})
		return
	}

	promo.IsActive = !promo.IsActive
	if err := db.Save(&promo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update promo code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "promo code updated",
		"promo_code": promo,
	})
}

// DELETE /api/admin/promo-codes/:id
func AdminDeletePromoCode(c *gin.Context) {
	db := dbFrom(c)

	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid promo code id"})
		return
	}

	var promo models.PromoCode
	if err := db.First(&promo, "id = ?", promoID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "promo code not found"})
		return
	}

	var used int64
	db.Model(&models.Transaction{}).Where("promo_code_id = ?", promo.ID).Count(&used)
	if used > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "promo code has been used and cannot be deleted"})
		return
	}

	if err := db.Delete(&promo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete promo code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "promo code deleted"})
}
