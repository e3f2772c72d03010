package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursehub/e-learning-backend/services"
)

func dbFrom(c *gin.Context) *gorm.DB {
	return c.MustGet("db").(*gorm.DB)
}

// currentViewer builds the explicit viewer identity from the auth context.
// Requests without a (valid) token are anonymous.
func currentViewer(c *gin.Context) services.Viewer {
	userIDStr := c.GetString("user_id")
	if userIDStr == "" {
		return services.Anonymous()
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return services.Anonymous()
	}
	return services.AuthenticatedViewer(userID)
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// parsePagination reads page/limit query params, degrading to defaults on
// junk input.
func parsePagination(c *gin.Context, defaultLimit int) (int, int) {
	page := 1
	limit := defaultLimit
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	return page, limit
}

// applyDateRange narrows a query by the from_date/to_date query params
// (YYYY-MM-DD, to_date inclusive). Unparsable values are ignored.
func applyDateRange(c *gin.Context, q *gorm.DB, column string) *gorm.DB {
	const layout = "2006-01-02"
	if fromStr := c.Query("from_date"); fromStr != "" {
		if from, err := time.Parse(layout, fromStr); err == nil {
			q = q.Where(column+" >= ?", from)
		}
	}
	if toStr := c.Query("to_date"); toStr != "" {
		if to, err := time.Parse(layout, toStr); err == nil {
			q = q.Where(column+" < ?", to.Add(24*time.Hour))
		}
	}
	return q
}
