package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursehub/e-learning-backend/config"
	"github.com/coursehub/e-learning-backend/models"
	"github.com/coursehub/e-learning-backend/services"
)

func loadCheckoutCourse(c *gin.Context) (*models.Course, bool) {
	db := dbFrom(c)

	courseID, err := uuid.Parse(c.Param("course"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return nil, false
	}

	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load course"})
		}
		return nil, false
	}
	return &course, true
}

// GET /api/courses/:course/checkout
func GetCheckout(c *gin.Context) {
	course, ok := loadCheckoutCourse(c)
	if !ok {
		return
	}

	checkout := services.NewCheckoutService(dbFrom(c), config.TaxPercentage())
	result, err := checkout.Evaluate(course, currentViewer(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not evaluate checkout"})
		return
	}

	switch result.Outcome {
	case services.CheckoutLoginRequired:
		c.JSON(http.StatusUnauthorized, gin.H{
			"outcome":     result.Outcome,
			"redirect_to": result.RedirectTo,
		})
	case services.CheckoutOwnCourse, services.CheckoutAlreadyEnrolled:
		c.JSON(http.StatusConflict, gin.H{
			"outcome":     result.Outcome,
			"error":       result.Message,
			"redirect_to": result.RedirectTo,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"outcome":     result.Outcome,
			"course":      result.Course,
			"promo_codes": result.PromoCodes,
			"tax":         result.TaxPercentage,
		})
	}
}

type ConfirmCheckoutInput struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
	PromoCode     string `json:"promo_code"`
}

// POST /api/courses/:course/checkout
//
// Order finalization: re-runs eligibility, validates the chosen promo code
// and writes transaction + enrollment + promo usage in one DB transaction.
// The unique (user_id, course_id) index backstops concurrent confirms.
func ConfirmCheckout(c *gin.Context) {
	db := dbFrom(c)

	course, ok := loadCheckoutCourse(c)
	if !ok {
		return
	}

	var input ConfirmCheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkout := services.NewCheckoutService(db, config.TaxPercentage())
	result, err := checkout.Evaluate(course, currentViewer(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not evaluate checkout"})
		return
	}
	if result.Outcome != services.CheckoutProceed {
		c.JSON(http.StatusConflict, gin.H{
			"outcome":     result.Outcome,
			"error":       result.Message,
			"redirect_to": result.RedirectTo,
		})
		return
	}

	userID, _ := currentUserID(c)

	var promo *models.PromoCode
	if input.PromoCode != "" {
		promo, err = checkout.ValidatePromoCode(input.PromoCode, course.Price, time.Now())
		if err != nil {
			if errors.Is(err, services.ErrPromoNotApplicable) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "promo code is not applicable"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not validate promo code"})
			return
		}
	}

	discount := 0.0
	if promo != nil {
		discount = services.PromoDiscount(promo, course.Price)
	}
	taxAmount := (course.Price - discount) * result.TaxPercentage / 100
	amount := course.Price - discount + taxAmount

	transaction := models.Transaction{
		UserID:         userID,
		CourseID:       course.ID,
		Amount:         amount,
		DiscountAmount: discount,
		TaxAmount:      taxAmount,
		Status:         models.TransactionCompleted,
		PaymentMethod:  input.PaymentMethod,
	}
	if promo != nil {
		transaction.PromoCodeID = &promo.ID
	}
	enrollment := models.Enrollment{
		UserID:   userID,
		CourseID: course.ID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}
		if promo != nil {
			res := tx.Model(&models.PromoCode{}).
				Where("id = ?", promo.ID).
				Where("max_uses IS NULL OR used_count < max_uses").
				UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return services.ErrPromoNotApplicable
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, services.ErrPromoNotApplicable) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "promo code is no longer applicable"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": "could not complete enrollment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "enrollment completed",
		"transaction": transaction,
		"enrollment":  enrollment,
	})
}
