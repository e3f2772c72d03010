package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/coursehub/e-learning-backend/services"
)

// GET /api/courses
func ListCourses(c *gin.Context) {
	db := dbFrom(c)

	filters := services.CourseFilters{
		Category:   c.Query("category"),
		Level:      c.Query("level"),
		Instructor: c.Query("instructor"),
		Search:     c.Query("search"),
		Sort:       services.ParseCourseSort(c.DefaultQuery("sort", "latest")),
	}
	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filters.Page = p
	}

	catalog := services.NewCatalogService(db)
	result, err := catalog.ListCourses(filters, currentViewer(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load courses"})
		return
	}

	categories, levels, err := catalog.FilterOptions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load filter options"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"courses":          result.Items,
		"page":             result.Page,
		"isNextPageExists": result.HasNextPage,
		"filters":          result.Filters,
		"categories":       categories,
		"levels":           levels,
	})
}

// GET /api/courses/:course
func GetCourseBySlug(c *gin.Context) {
	db := dbFrom(c)

	catalog := services.NewCatalogService(db)
	detail, err := catalog.GetCourseDetail(c.Param("course"), currentViewer(c))
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load course"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"course":            detail.Course,
		"average_rating":    detail.AverageRating,
		"lessons_count":     detail.LessonsCount,
		"enrollments_count": detail.EnrollmentsCount,
		"reviews_count":     detail.ReviewsCount,
		"is_enrolled":       detail.IsEnrolled,
		"reviews":           detail.Reviews,
		"similar_courses":   detail.SimilarCourses,
		"active_tab":        c.DefaultQuery("tab", "overview"),
	})
}
