package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coursehub/e-learning-backend/config"
	"github.com/coursehub/e-learning-backend/middleware"
	"github.com/coursehub/e-learning-backend/models"
	"github.com/coursehub/e-learning-backend/utils"
)

// newTestRouter wires the routes under test against an in-memory database.
// Registering routes here instead of routes.SetupRouter avoids an import
// cycle with the routes package.
func newTestRouter(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	r := gin.New()
	r.GET("/health", middleware.DBMiddleware(db), HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.DBMiddleware(db))

	api.POST("/auth/register", Register)
	api.POST("/auth/login", Login)

	confirm := api.Group("/courses/:course")
	confirm.Use(middleware.AuthMiddleware())
	confirm.POST("/checkout", ConfirmCheckout)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles("admin"))
	admin.PUT("/categories/:id", UpdateCategory)
	admin.DELETE("/categories/:id", DeleteCategory)

	instructor := api.Group("/instructor")
	instructor.Use(middleware.AuthMiddleware(), middleware.RequireRoles("instructor", "admin"))
	instructor.PUT("/courses/:id", InstructorUpdateCourse)
	instructor.POST("/courses/:id/lessons", InstructorCreateLesson)
	instructor.PATCH("/courses/:id/lessons/reorder", InstructorReorderLessons)

	return db, r
}

func createUser(t *testing.T, db *gorm.DB, role models.UserRole) models.User {
	t.Helper()
	user := models.User{
		Name:     "tester",
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Password: "irrelevant",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func authHeader(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID.String(), string(user.Role))
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	_, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Sam Student",
		"email":    "sam@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// duplicate email is rejected
	w = doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Sam Again",
		"email":    "sam@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "sam@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "sam@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteCategoryGuard(t *testing.T) {
	db, r := newTestRouter(t)
	admin := createUser(t, db, models.RoleAdmin)
	auth := authHeader(t, admin)

	parent := models.Category{Name: "Parent", Slug: "parent"}
	require.NoError(t, db.Create(&parent).Error)
	child := models.Category{Name: "Child", Slug: "child", ParentID: &parent.ID}
	require.NoError(t, db.Create(&child).Error)

	occupied := models.Category{Name: "Occupied", Slug: "occupied"}
	require.NoError(t, db.Create(&occupied).Error)
	instructor := createUser(t, db, models.RoleInstructor)
	course := models.Course{
		Title: "c", Slug: "c", CategoryID: occupied.ID, UserID: instructor.ID,
	}
	require.NoError(t, db.Create(&course).Error)

	// a parent category cannot be deleted while children exist
	w := doJSON(t, r, http.MethodDelete, "/api/admin/categories/"+parent.ID.String(), auth, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// nor one that still has courses
	w = doJSON(t, r, http.MethodDelete, "/api/admin/categories/"+occupied.ID.String(), auth, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// the leaf child deletes fine
	w = doJSON(t, r, http.MethodDelete, "/api/admin/categories/"+child.ID.String(), auth, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var remaining int64
	db.Model(&models.Category{}).Count(&remaining)
	require.Equal(t, int64(2), remaining)
}

func TestDeleteCategoryRequiresAdmin(t *testing.T) {
	db, r := newTestRouter(t)
	student := createUser(t, db, models.RoleStudent)

	category := models.Category{Name: "Any", Slug: "any"}
	require.NoError(t, db.Create(&category).Error)

	w := doJSON(t, r, http.MethodDelete, "/api/admin/categories/"+category.ID.String(), authHeader(t, student), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/admin/categories/"+category.ID.String(), "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLessonCreateAndReorder(t *testing.T) {
	db, r := newTestRouter(t)
	instructor := createUser(t, db, models.RoleInstructor)
	auth := authHeader(t, instructor)

	category := models.Category{Name: "Go", Slug: "go"}
	require.NoError(t, db.Create(&category).Error)
	course := models.Course{
		Title: "Course", Slug: "course", CategoryID: category.ID, UserID: instructor.ID,
	}
	require.NoError(t, db.Create(&course).Error)

	base := "/api/instructor/courses/" + course.ID.String() + "/lessons"
	for _, title := range []string{"intro", "middle", "outro"} {
		w := doJSON(t, r, http.MethodPost, base, auth, gin.H{"title": title})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	var lessons []models.Lesson
	require.NoError(t, db.Where("course_id = ?", course.ID).Order("sort_order ASC").Find(&lessons).Error)
	require.Len(t, lessons, 3)
	// each new lesson lands at the end
	require.Equal(t, []int{1, 2, 3}, []int{lessons[0].SortOrder, lessons[1].SortOrder, lessons[2].SortOrder})
	require.Equal(t, "intro", lessons[0].Title)

	// reverse the order
	w := doJSON(t, r, http.MethodPatch, base+"/reorder", auth, gin.H{
		"lessons": []gin.H{
			{"id": lessons[2].ID.String(), "order": 1},
			{"id": lessons[1].ID.String(), "order": 2},
			{"id": lessons[0].ID.String(), "order": 3},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.Where("course_id = ?", course.ID).Order("sort_order ASC").Find(&lessons).Error)
	require.Equal(t, "outro", lessons[0].Title)
	require.Equal(t, "intro", lessons[2].Title)
}

func TestHealthCheck(t *testing.T) {
	_, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string `json:"status"`
		DB     string `json:"db"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "ok", resp.DB)
}

func TestUpdateCourseKeepsPriceWhenOmitted(t *testing.T) {
	db, r := newTestRouter(t)
	instructor := createUser(t, db, models.RoleInstructor)
	auth := authHeader(t, instructor)

	category := models.Category{Name: "Go", Slug: "go"}
	require.NoError(t, db.Create(&category).Error)
	course := models.Course{
		Title: "Paid", Slug: "paid", Price: 49.99,
		CategoryID: category.ID, UserID: instructor.ID,
	}
	require.NoError(t, db.Create(&course).Error)

	path := "/api/instructor/courses/" + course.ID.String()

	// an update without a price field must not touch the price
	w := doJSON(t, r, http.MethodPut, path, auth, gin.H{
		"title":       "Paid, renamed",
		"category_id": category.ID.String(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Course
	require.NoError(t, db.First(&updated, "id = ?", course.ID).Error)
	require.InDelta(t, 49.99, updated.Price, 0.001)
	require.Equal(t, "Paid, renamed", updated.Title)

	// an explicit zero makes the course free
	w = doJSON(t, r, http.MethodPut, path, auth, gin.H{
		"title":       "Now free",
		"category_id": category.ID.String(),
		"price":       0,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&updated, "id = ?", course.ID).Error)
	require.Zero(t, updated.Price)
}

func TestUpdateCategoryRejectsCycle(t *testing.T) {
	db, r := newTestRouter(t)
	admin := createUser(t, db, models.RoleAdmin)
	auth := authHeader(t, admin)

	root := models.Category{Name: "Root", Slug: "root"}
	require.NoError(t, db.Create(&root).Error)
	child := models.Category{Name: "Child", Slug: "child", ParentID: &root.ID}
	require.NoError(t, db.Create(&child).Error)
	grandchild := models.Category{Name: "Grandchild", Slug: "grandchild", ParentID: &child.ID}
	require.NoError(t, db.Create(&grandchild).Error)

	// adopting a descendant as parent would close a loop in the tree
	w := doJSON(t, r, http.MethodPut, "/api/admin/categories/"+root.ID.String(), auth, gin.H{
		"name":      "Root",
		"parent_id": grandchild.ID.String(),
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/admin/categories/"+root.ID.String(), auth, gin.H{
		"name":      "Root",
		"parent_id": root.ID.String(),
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var reloaded models.Category
	require.NoError(t, db.First(&reloaded, "id = ?", root.ID).Error)
	require.Nil(t, reloaded.ParentID)

	// reparenting the grandchild under the root is still fine
	w = doJSON(t, r, http.MethodPut, "/api/admin/categories/"+grandchild.ID.String(), auth, gin.H{
		"name":      "Grandchild",
		"parent_id": root.ID.String(),
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestConfirmCheckout(t *testing.T) {
	db, r := newTestRouter(t)
	t.Setenv("TAX_PERCENTAGE", "10")

	instructor := createUser(t, db, models.RoleInstructor)
	student := createUser(t, db, models.RoleStudent)
	auth := authHeader(t, student)

	category := models.Category{Name: "Go", Slug: "go"}
	require.NoError(t, db.Create(&category).Error)
	course := models.Course{
		Title: "Paid", Slug: "paid", Price: 100,
		CategoryID: category.ID, UserID: instructor.ID,
		IsPublished: true, IsApproved: true,
	}
	require.NoError(t, db.Create(&course).Error)

	maxUses := 1
	promo := models.PromoCode{
		Code:          "SAVE10",
		DiscountType:  models.DiscountPercent,
		DiscountValue: 10,
		IsActive:      true,
		StartDate:     time.Now().AddDate(0, -1, 0),
		MaxUses:       &maxUses,
	}
	require.NoError(t, db.Create(&promo).Error)

	path := "/api/courses/" + course.ID.String() + "/checkout"
	w := doJSON(t, r, http.MethodPost, path, auth, gin.H{
		"payment_method": "card",
		"promo_code":     "SAVE10",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// price 100, 10% promo, 10% tax on the discounted 90
	var txn models.Transaction
	require.NoError(t, db.First(&txn, "user_id = ? AND course_id = ?", student.ID, course.ID).Error)
	require.InDelta(t, 10.0, txn.DiscountAmount, 0.001)
	require.InDelta(t, 9.0, txn.TaxAmount, 0.001)
	require.InDelta(t, 99.0, txn.Amount, 0.001)
	require.Equal(t, models.TransactionCompleted, txn.Status)
	require.NotNil(t, txn.PromoCodeID)

	var enrolled int64
	db.Model(&models.Enrollment{}).Where("user_id = ? AND course_id = ?", student.ID, course.ID).Count(&enrolled)
	require.Equal(t, int64(1), enrolled)

	var usedPromo models.PromoCode
	require.NoError(t, db.First(&usedPromo, "id = ?", promo.ID).Error)
	require.Equal(t, 1, usedPromo.UsedCount)

	// a second confirm for the same user/course is rejected, nothing written
	w = doJSON(t, r, http.MethodPost, path, auth, gin.H{"payment_method": "card"})
	require.Equal(t, http.StatusConflict, w.Code)

	var txns int64
	db.Model(&models.Transaction{}).Count(&txns)
	require.Equal(t, int64(1), txns)

	// the promo is spent: another student cannot apply it anymore
	other := createUser(t, db, models.RoleStudent)
	w = doJSON(t, r, http.MethodPost, path, authHeader(t, other), gin.H{
		"payment_method": "card",
		"promo_code":     "SAVE10",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// without the promo the second student enrolls at full taxed price
	w = doJSON(t, r, http.MethodPost, path, authHeader(t, other), gin.H{"payment_method": "card"})
	require.Equal(t, http.StatusCreated, w.Code)
	// reset so the previous row's primary key is not added to the query
	txn = models.Transaction{}
	require.NoError(t, db.First(&txn, "user_id = ? AND course_id = ?", other.ID, course.ID).Error)
	require.InDelta(t, 110.0, txn.Amount, 0.001)
	require.Zero(t, txn.DiscountAmount)
}

func TestLessonEndpointsEnforceOwnership(t *testing.T) {
	db, r := newTestRouter(t)
	owner := createUser(t, db, models.RoleInstructor)
	other := createUser(t, db, models.RoleInstructor)

	category := models.Category{Name: "Go", Slug: "go"}
	require.NoError(t, db.Create(&category).Error)
	course := models.Course{
		Title: "Course", Slug: "course", CategoryID: category.ID, UserID: owner.ID,
	}
	require.NoError(t, db.Create(&course).Error)

	base := "/api/instructor/courses/" + course.ID.String() + "/lessons"
	w := doJSON(t, r, http.MethodPost, base, authHeader(t, other), gin.H{"title": "sneaky"})
	require.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	db.Model(&models.Lesson{}).Count(&count)
	require.Zero(t, count)
}
