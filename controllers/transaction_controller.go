package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/coursehub/e-learning-backend/models"
)

func transactionQuery(c *gin.Context, db *gorm.DB) *gorm.DB {
	query := db.Model(&models.Transaction{}).
		Joins("JOIN users ON users.id = transactions.user_id").
		Joins("JOIN courses ON courses.id = transactions.course_id")

	if search := c.Query("search"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"(LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(courses.title) LIKE ?)",
			like, like, like,
		)
	}
	if status := c.Query("status"); status != "" && status != "all" {
		query = query.Where("transactions.status = ?", status)
	}
	return applyDateRange(c, query, "transactions.created_at")
}

func transactionSort(c *gin.Context) string {
	field := "transactions.created_at"
	switch c.Query("sort_field") {
	case "amount":
		field = "transactions.amount"
	case "status":
		field = "transactions.status"
	}
	direction := "DESC"
	if c.Query("sort_direction") == "asc" {
		direction = "ASC"
	}
	return field + " " + direction
}

// GET /api/admin/transactions
func AdminGetTransactions(c *gin.Context) {
	db := dbFrom(c)

	query := transactionQuery(c, db)

	page, limit := parsePagination(c, 10)
	var total int64
	query.Count(&total)

	var transactions []models.Transaction
	if err := query.
		Preload("User").
		Preload("Course").
		Preload("PromoCode").
		Order(transactionSort(c)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&transactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       transactions,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	})
}

// GET /api/admin/transactions/export
//
// Streams the filtered transaction set (no pagination) as an .xlsx file.
func ExportTransactions(c *gin.Context) {
	db := dbFrom(c)

	var transactions []models.Transaction
	if err := transactionQuery(c, db).
		Preload("User").
		Preload("Course").
		Order(transactionSort(c)).
		Find(&transactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load transactions"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Transactions"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "User", "Email", "Course", "Amount", "Discount", "Tax", "Status", "Payment Method", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, t := range transactions {
		values := []interface{}{
			t.ID.String(),
			t.User.Name,
			t.User.Email,
			t.Course.Title,
			t.Amount,
			t.DiscountAmount,
			t.TaxAmount,
			t.Status,
			t.PaymentMethod,
			t.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("transactions-%s.xlsx", c.DefaultQuery("status", "all"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not write export"})
	}
}
