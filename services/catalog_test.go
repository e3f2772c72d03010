package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coursehub/e-learning-backend/config"
	"github.com/coursehub/e-learning-backend/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one in-memory sqlite database per connection otherwise
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, role models.UserRole) models.User {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	category := models.Category{Name: name + "-" + uuid.NewString()[:8], Slug: name + "-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&category).Error)
	return category
}

type courseOption func(*models.Course)

func withPrice(price float64) courseOption {
	return func(c *models.Course) { c.Price = price }
}

func withLevel(level string) courseOption {
	return func(c *models.Course) { c.Level = level }
}

func withDescription(desc string) courseOption {
	return func(c *models.Course) { c.Description = desc }
}

func unpublished() courseOption {
	return func(c *models.Course) { c.IsPublished = false }
}

func unapproved() courseOption {
	return func(c *models.Course) { c.IsApproved = false }
}

func createdAt(ts time.Time) courseOption {
	return func(c *models.Course) { c.CreatedAt = ts }
}

func seedCourse(t *testing.T, db *gorm.DB, title string, category models.Category, instructor models.User, opts ...courseOption) models.Course {
	t.Helper()
	course := models.Course{
		Title:       title,
		Slug:        fmt.Sprintf("%s-%s", title, uuid.NewString()[:8]),
		Price:       10,
		CategoryID:  category.ID,
		UserID:      instructor.ID,
		IsPublished: true,
		IsApproved:  true,
	}
	for _, opt := range opts {
		opt(&course)
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func seedReview(t *testing.T, db *gorm.DB, course models.Course, user models.User, rating int, approved bool) models.Review {
	t.Helper()
	review := models.Review{
		CourseID:   course.ID,
		UserID:     user.ID,
		Rating:     rating,
		IsApproved: approved,
	}
	require.NoError(t, db.Create(&review).Error)
	return review
}

func seedEnrollment(t *testing.T, db *gorm.DB, user models.User, course models.Course) models.Enrollment {
	t.Helper()
	enrollment := models.Enrollment{UserID: user.ID, CourseID: course.ID}
	require.NoError(t, db.Create(&enrollment).Error)
	return enrollment
}

func listTitles(items []CourseSummary) []string {
	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title
	}
	return titles
}

func TestParseCourseSort(t *testing.T) {
	assert.Equal(t, SortPopular, ParseCourseSort("popular"))
	assert.Equal(t, SortRating, ParseCourseSort("rating"))
	assert.Equal(t, SortPriceLow, ParseCourseSort("price_low"))
	assert.Equal(t, SortPriceHigh, ParseCourseSort("price_high"))
	assert.Equal(t, SortLatest, ParseCourseSort("latest"))

	// junk degrades to the default instead of failing
	assert.Equal(t, SortLatest, ParseCourseSort("nonsense"))
	assert.Equal(t, SortLatest, ParseCourseSort(""))
}

func TestListCoursesVisibilityGate(t *testing.T) {
	db := testDB(t)
	instructor := seedUser(t, db, "ada", models.RoleInstructor)
	category := seedCategory(t, db, "go")

	seedCourse(t, db, "visible", category, instructor)
	seedCourse(t, db, "draft", category, instructor, unpublished())
	seedCourse(t, db, "pending", category, instructor, unapproved())

	result, err := NewCatalogService(db).ListCourses(CourseFilters{}, Anonymous())
	require.NoError(t, err)
	assert.Equal(t, []string{"visible"}, listTitles(result.Items))
}

func TestListCoursesSearch(t *testing.T) {
	db := testDB(t)
	instructor := seedUser(t, db, "ada", models.RoleInstructor)
	category := seedCategory(t, db, "go")

	seedCourse(t, db, "Advanced Gopher Patterns", category, instructor)
	seedCourse(t, db, "Cooking 101", category, instructor, withDescription("nothing about gophers here, wait, yes"))
	seedCourse(t, db, "Watercolors", category, instructor)

	result, err := NewCatalogService(db).ListCourses(CourseFilters{Search: "GOPHER"}, Anonymous())
	require.NoError(t, err)

	titles := listTitles(result.Items)
	assert.Len(t, titles, 2)
	assert.Contains(t, titles, "Advanced Gopher Patterns")
	assert.Contains(t, titles, "Cooking 101")
}

func TestListCoursesFilterByLevelAndCategory(t *testing.T) {
	db := testDB(t)
	instructor := seedUser(t, db, "ada", models.RoleInstructor)
	catGo := seedCategory(t, db, "go")
	catArt := seedCategory(t, db, "art")

	seedCourse(t, db, "go-beginner", catGo, instructor, withLevel("beginner"))
	seedCourse(t, db, "go-advanced", catGo, instructor, withLevel("advanced"))
	seedCourse(t, db, "art-beginner", catArt, instructor, withLevel("beginner"))

	svc := NewCatalogService(db)

	result, err := svc.ListCourses(CourseFilters{Category: catGo.ID.String(), Level: "beginner"}, Anonymous())
	require.NoError(t, err)
	assert.Equal(t, []string{"go-beginner"}, listTitles(result.Items))

	// malformed category id matches nothing but is still echoed back
	result, err = svc.ListCourses(CourseFilters{Category: "not-a-uuid"}, Anonymous())
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, "not-a-uuid", result.Filters.Category)
}

func TestListCoursesRatingSortPutsUnratedLast(t *testing.T) {
	db := testDB(t)
	instructor := seedUser(t, db, "ada", models.RoleInstructor)
	category := seedCategory(t, db, "go")

	top := seedCourse(t, db, "top", category, instructor)
	mid := seedCourse(t, db, "mid", category, instructor)
	seedCourse(t, db, "unrated", category, instructor)
	shady := seedCourse(t, db, "unapproved-only", category, instructor)

	r1 := seedUser(t, db, "r1", models.RoleStudent)
	r2 := seedUser(t, db, "r2", models.RoleStudent)
	seedReview(t, db, top, r1, 5, true)
	seedReview(t, db, mid, r1, 3, true)
	seedReview(t, db, mid, r2, 4, true)
	// unapproved reviews must not feed the average
	seedReview(t, db, shady, r2, 5, false)

	result, err := NewCatalogService(db).ListCourses(CourseFilters{Sort: SortRating}, Anonymous())
	require.NoError(t, err)

	titles := listTitles(result.Items)
	require.Len(t, titles, 4)
	assert.Equal(t, "top", titles[0])
	assert.Equal(t, "mid", titles[1])
	// courses with no approved reviews trail the rated ones
	assert.ElementsMatch(t, []string{"unrated", "unapproved-only"}, titles[2:])

	assert.InDelta(t, 5.0, result.Items[0].AverageRating, 0.001)
	assert.InDelta(t, 3.5, result.Items[1].AverageRating, 0.001)
	assert.Equal(t, int64(2), result.Items[1].ReviewsCount)
}

func TestListCoursesPriceSortDeterministicTies(t *testing.T) {
	db := testDB(t)
	instructor := seedUser(t, db, "ada", models.RoleInstructor)
	category := seedCategory(t, db, "go")

	seedCourse(t, db, "cheap", category, instructor, withPrice(5))
	seedCourse(t, db, "tie-a", category, instructor, withPrice(10))
	seedCourse(t, db, "tie-b", category, instructor, withPrice(10))
	seedCourse(t, db, "dear", category, instructor, withPrice(50))

	svc := NewCatalogService(db)

	asc, err := svc.ListCourses(CourseFilters{Sort: SortPriceLow}, Anonymous())
	require.NoError(t, err)
	require.Len(t, asc.Items, 4)
	assert.Equal(t, "cheap", asc.Items[0].Title)
	assert.Equal(t, "dear", asc.Items[3].Title)

	desc, err := svc.ListCourses(CourseFilters{Sort: SortPriceHigh}, Anonymous())
	require.NoError(t, err)
	assert.Equal(t, "dear", desc.Items[0].Title)

	// equal prices keep a stable relative order across calls
	again, err := svc.ListCourses(CourseFilters{Sort: SortPriceLow}, Anonymous())
	require.NoError(t, err)
	assert.Equal(t, listTitles(asc.Items), listTitles(again.Items))
}

func TestListCoursesPopularSort(t *testing.T) {
	db := testDB(t)
	instructor := seedUser(t, db, "ada", models.RoleInstructor)
	category := seedCategory(t, db, "go")

	hot := seedCourse(t, db, "hot", category, instructor)
	cold := seedCourse(t, db, "cold", category, instructor)

	s1 := seedUser(t, db, "s1", models.RoleStudent)
	s2 := seedUser(t, db, "s2", models.RoleStudent)
	seedEnrollment(t, db, s1, hot)
	seedEnrollment(t, db, s2, hot)
	seedEnrollment(t, db, s1, cold)

	result, err := NewCatalogService(db).ListCourses(CourseFilters{Sort: SortPopular}, Anonymous())
	require.NoError(t, err)
	assert.Equal(t, []string{"hot", "cold"}, listTitles(result.Items))
	assert.Equal(t, int64(2), result.Items[0].EnrollmentsCount)
}

func TestListCoursesPagination(t *testing.T) {
	db := testDB(t)
	instructor := seedUser(t, db, "ada", models.RoleInstructor)
	category := seedCategory(t, db, "go")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < CatalogPageSize+3; i++ {
		seedCourse(t, db, fmt.Sprintf("course-%02d", i), category, instructor,
			createdAt(base.Add(time.Duration(i)*time.Hour)))
	}

	svc := NewCatalogService(db)

	page1, err := svc.ListCourses(CourseFilters{Page: 1}, Anonymous())
	require.NoError(t, err)
	assert.Len(t, page1.Items, CatalogPageSize)
	assert.True(t, page1.HasNextPage)
	assert.Equal(t, 1, page1.Page)

	page2, err := svc.ListCourses(CourseFilters{Page: 2}, Anonymous())
	require.NoError(t, err)
	assert.Len(t, page2.Items, 3)
	assert.False(t, page2.HasNextPage)

	// zero / negative pages degrade to the first page
	degraded, err := svc.ListCourses(CourseFilters{Page: -4}, Anonymous())
	require.NoError(t, err)
	assert.Equal(t, 1, degraded.Page)
	assert.Equal(t, listTitles(page1.Items), listTitles(degraded.Items))
}

func TestListCoursesViewerFlags(t *testing.T) {
	db := testDB(t)
	instructor := seedUser(t, db, "ada", models.RoleInstructor)
	category := seedCategory(t, db, "go")
	student := seedUser(t, db, "sam", models.RoleStudent)

	enrolledCourse := seedCourse(t, db, "enrolled", category, instructor)
	wishedCourse := seedCourse(t, db, "wished", category, instructor)
	seedCourse(t, db, "other", category, instructor)

	seedEnrollment(t, db, student, enrolledCourse)
	require.NoError(t, db.Create(&models.Wishlist{UserID: student.ID, CourseID: wishedCourse.ID}).Error)

	svc := NewCatalogService(db)

	anon, err := svc.ListCourses(CourseFilters{}, Anonymous())
	require.NoError(t, err)
	for _, item := range anon.Items {
		assert.False(t, item.IsEnrolled, item.Title)
		assert.False(t, item.IsWishlisted, item.Title)
	}

	authed, err := svc.ListCourses(CourseFilters{}, AuthenticatedViewer(student.ID))
	require.NoError(t, err)
	flags := map[string][2]bool{}
	for _, item := range authed.Items {
		flags[item.Title] = [2]bool{item.IsEnrolled, item.IsWishlisted}
	}
	assert.Equal(t, [2]bool{true, false}, flags["enrolled"])
	assert.Equal(t, [2]bool{false, true}, flags["wished"])
	assert.Equal(t, [2]bool{false, false}, flags["other"])
}

func TestGetCourseDetail(t *testing.T) {
	db := testDB(t)
	instructor := seedUser(t, db, "ada", models.RoleInstructor)
	category := seedCategory(t, db, "go")

	course := seedCourse(t, db, "main", category, instructor)
	sibling := seedCourse(t, db, "sibling", category, instructor)
	seedCourse(t, db, "hidden-sibling", category, instructor, unpublished())

	require.NoError(t, db.Create(&models.Lesson{CourseID: course.ID, Title: "second", SortOrder: 2}).Error)
	require.NoError(t, db.Create(&models.Lesson{CourseID: course.ID, Title: "first", SortOrder: 1}).Error)

	student := seedUser(t, db, "sam", models.RoleStudent)
	seedEnrollment(t, db, student, course)
	seedReview(t, db, course, student, 4, true)

	svc := NewCatalogService(db)

	detail, err := svc.GetCourseDetail(course.Slug, AuthenticatedViewer(student.ID))
	require.NoError(t, err)
	assert.Equal(t, course.ID, detail.Course.ID)
	require.Len(t, detail.Course.Lessons, 2)
	assert.Equal(t, "first", detail.Course.Lessons[0].Title)
	assert.Equal(t, int64(2), detail.LessonsCount)
	assert.Equal(t, int64(1), detail.EnrollmentsCount)
	assert.InDelta(t, 4.0, detail.AverageRating, 0.001)
	assert.True(t, detail.IsEnrolled)
	require.Len(t, detail.SimilarCourses, 1)
	assert.Equal(t, sibling.ID, detail.SimilarCourses[0].ID)

	anonDetail, err := svc.GetCourseDetail(course.Slug, Anonymous())
	require.NoError(t, err)
	assert.False(t, anonDetail.IsEnrolled)
}

func TestGetCourseDetailGatesDrafts(t *testing.T) {
	db := testDB(t)
	instructor := seedUser(t, db, "ada", models.RoleInstructor)
	category := seedCategory(t, db, "go")

	draft := seedCourse(t, db, "draft", category, instructor, unpublished())

	_, err := NewCatalogService(db).GetCourseDetail(draft.Slug, Anonymous())
	assert.ErrorIs(t, err, ErrCourseNotFound)

	_, err = NewCatalogService(db).GetCourseDetail("no-such-slug", Anonymous())
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestFilterOptions(t *testing.T) {
	db := testDB(t)
	instructor := seedUser(t, db, "ada", models.RoleInstructor)
	catA := seedCategory(t, db, "a")
	catB := seedCategory(t, db, "b")

	seedCourse(t, db, "one", catA, instructor, withLevel("beginner"))
	seedCourse(t, db, "two", catB, instructor, withLevel("advanced"))
	seedCourse(t, db, "three", catB, instructor, withLevel("beginner"))
	seedCourse(t, db, "four", catB, instructor, withLevel(""))

	categories, levels, err := NewCatalogService(db).FilterOptions()
	require.NoError(t, err)
	assert.Len(t, categories, 2)
	assert.Equal(t, []string{"advanced", "beginner"}, levels)
}
