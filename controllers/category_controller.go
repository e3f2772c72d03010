package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/coursehub/e-learning-backend/models"
)

type CategoryInput struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parent_id"`
}

// POST /api/admin/categories
func CreateCategory(c *gin.Context) {
	db := dbFrom(c)

	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category name is required"})
		return
	}
	slugValue := slug.Make(name)

	var count int64
	db.Model(&models.Category{}).
		Where("LOWER(name) = ? OR slug = ?", strings.ToLower(name), slugValue).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category name or slug already exists"})
		return
	}

	category := models.Category{
		Name: name,
		Slug: slugValue,
	}
	if input.ParentID != nil && *input.ParentID != "" {
		parentID, err := uuid.Parse(*input.ParentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parent_id"})
			return
		}
		var parent models.Category
		if err := db.First(&parent, "id = ?", parentID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "parent category not found"})
			return
		}
		category.ParentID = &parentID
	}

	if err := db.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create category"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "category created",
		"category": category,
	})
}

// GET /api/admin/categories
func GetCategories(c *gin.Context) {
	db := dbFrom(c)

	query := db.Model(&models.Category{})
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	page, limit := parsePagination(c, 10)
	var total int64
	query.Count(&total)

	var categories []models.Category
	if err := query.Order("name ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load categories"})
		return
	}

	// counts drive the delete guard in the admin UI
	type categoryRow struct {
		models.Category
		ChildrenCount int64 `json:"children_count"`
		CoursesCount  int64 `json:"courses_count"`
	}
	rows := make([]categoryRow, 0, len(categories))
	for _, cat := range categories {
		row := categoryRow{Category: cat}
		db.Model(&models.Category{}).Where("parent_id = ?", cat.ID).Count(&row.ChildrenCount)
		db.Model(&models.Course{}).Where("category_id = ?", cat.ID).Count(&row.CoursesCount)
		rows = append(rows, row)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       rows,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	})
}

// categoryInAncestry reports whether target appears in the parent chain
// starting at from (inclusive). Used to keep the category tree acyclic:
// a category must not adopt itself or one of its descendants as parent.
func categoryInAncestry(db *gorm.DB, from, target uuid.UUID) (bool, error) {
	current := from
	for {
		if current == target {
			return true, nil
		}
		var node models.Category
		if err := db.Select("id", "parent_id").First(&node, "id = ?", current).Error; err != nil {
			return false, err
		}
		if node.ParentID == nil {
			return false, nil
		}
		current = *node.ParentID
	}
}

// PUT /api/admin/categories/:id
func UpdateCategory(c *gin.Context) {
	db := dbFrom(c)

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	var category models.Category
	if err := db.First(&category, "id = ?", categoryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}

	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name != "" && name != category.Name {
		slugValue := slug.Make(name)
		var count int64
		db.Model(&models.Category{}).
			Where("(LOWER(name) = ? OR slug = ?) AND id <> ?", strings.ToLower(name), slugValue, category.ID).
			Count(&count)
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category name or slug already exists"})
			return
		}
		category.Name = name
		category.Slug = slugValue
	}

	if input.ParentID != nil {
		if *input.ParentID == "" {
			category.ParentID = nil
		} else {
			parentID, err := uuid.Parse(*input.ParentID)
			if err != nil || parentID == category.ID {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parent_id"})
				return
			}
			cyclic, err := categoryInAncestry(db, parentID, category.ID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "parent category not found"})
				return
			}
			if cyclic {
				c.JSON(http.StatusBadRequest, gin.H{"error": "parent_id would create a category cycle"})
				return
			}
			category.ParentID = &parentID
		}
	}

	if err := db.Save(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "category updated",
		"category": category,
	})
}

// DELETE /api/admin/categories/:id
//
// A category with child categories or courses must not be deleted.
func DeleteCategory(c *gin.Context) {
	db := dbFrom(c)

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	var category models.Category
	if err := db.First(&category, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load category"})
		}
		return
	}

	var childrenCount int64
	db.Model(&models.Category{}).Where("parent_id = ?", category.ID).Count(&childrenCount)
	if childrenCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category has child categories and cannot be deleted"})
		return
	}

	var coursesCount int64
	db.Model(&models.Course{}).Where("category_id = ?", category.ID).Count(&coursesCount)
	if coursesCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category has courses and cannot be deleted"})
		return
	}

	if err := db.Delete(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}
