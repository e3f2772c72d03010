package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursehub/e-learning-backend/models"
)

// ErrCourseNotFound is returned when a slug does not resolve to a
// published and approved course.
var ErrCourseNotFound = errors.New("course not found")

// CatalogPageSize is fixed; callers cannot change it.
const CatalogPageSize = 9

type CourseSort int

const (
	SortLatest CourseSort = iota
	SortPopular
	SortRating
	SortPriceLow
	SortPriceHigh
)

// ParseCourseSort maps a query-string sort key to a CourseSort.
// Unrecognized keys fall back to SortLatest instead of failing.
func ParseCourseSort(key string) CourseSort {
	switch key {
	case "popular":
		return SortPopular
	case "rating":
		return SortRating
	case "price_low":
		return SortPriceLow
	case "price_high":
		return SortPriceHigh
	default:
		return SortLatest
	}
}

func (s CourseSort) String() string {
	switch s {
	case SortPopular:
		return "popular"
	case SortRating:
		return "rating"
	case SortPriceLow:
		return "price_low"
	case SortPriceHigh:
		return "price_high"
	default:
		return "latest"
	}
}

// CourseFilters carries the raw filter input from the request. Category and
// Instructor stay strings so the echoed filters match what was asked for;
// malformed or unknown ids simply match no rows.
type CourseFilters struct {
	Category   string
	Level      string
	Instructor string
	Search     string
	Sort       CourseSort
	Page       int
}

type EchoedFilters struct {
	Category   string `json:"category"`
	Level      string `json:"level"`
	Search     string `json:"search"`
	Sort       string `json:"sort"`
	Instructor string `json:"instructor"`
}

func (f CourseFilters) echo() EchoedFilters {
	return EchoedFilters{
		Category:   f.Category,
		Level:      f.Level,
		Search:     f.Search,
		Sort:       f.Sort.String(),
		Instructor: f.Instructor,
	}
}

type InstructorSummary struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	ProfilePhotoPath string    `json:"profile_photo_path"`
}

// CourseSummary is the enriched, immutable view of one catalog row.
type CourseSummary struct {
	ID               uuid.UUID         `json:"id"`
	Title            string            `json:"title"`
	Slug             string            `json:"slug"`
	ShortDescription string            `json:"short_description"`
	Thumbnail        string            `json:"thumbnail"`
	Price            float64           `json:"price"`
	Level            string            `json:"level"`
	Category         models.Category   `json:"category"`
	Instructor       InstructorSummary `json:"instructor"`
	AverageRating    float64           `json:"average_rating"`
	LessonsCount     int64             `json:"lessons_count"`
	EnrollmentsCount int64             `json:"enrollments_count"`
	ReviewsCount     int64             `json:"reviews_count"`
	IsEnrolled       bool              `json:"is_enrolled"`
	IsWishlisted     bool              `json:"is_wishlisted"`
	CreatedAt        time.Time         `json:"created_at"`
}

type CourseList struct {
	Items       []CourseSummary `json:"items"`
	Page        int             `json:"page"`
	HasNextPage bool            `json:"has_next_page"`
	Filters     EchoedFilters   `json:"filters"`
}

type CourseDetail struct {
	Course           models.Course   `json:"course"`
	AverageRating    float64         `json:"average_rating"`
	LessonsCount     int64           `json:"lessons_count"`
	EnrollmentsCount int64           `json:"enrollments_count"`
	ReviewsCount     int64           `json:"reviews_count"`
	IsEnrolled       bool            `json:"is_enrolled"`
	Reviews          []models.Review `json:"reviews"`
	SimilarCourses   []models.Course `json:"similar_courses"`
}

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// baseQuery applies the public visibility gate and the supplied filters.
// Built fresh for each use so count and fetch see identical predicates.
func (s *CatalogService) baseQuery(f CourseFilters) *gorm.DB {
	q := s.db.Model(&models.Course{}).
		Where("courses.is_published = ?", true).
		Where("courses.is_approved = ?", true)

	if f.Category != "" {
		id, err := uuid.Parse(f.Category)
		if err != nil {
			id = uuid.Nil
		}
		q = q.Where("courses.category_id = ?", id)
	}
	if f.Level != "" {
		q = q.Where("courses.level = ?", f.Level)
	}
	if f.Instructor != "" {
		id, err := uuid.Parse(f.Instructor)
		if err != nil {
			id = uuid.Nil
		}
		q = q.Where("courses.user_id = ?", id)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where(
			"(LOWER(courses.title) LIKE ? OR LOWER(courses.description) LIKE ? OR LOWER(courses.short_description) LIKE ?)",
			like, like, like,
		)
	}
	return q
}

// ListCourses returns one page of enriched course summaries.
func (s *CatalogService) ListCourses(filters CourseFilters, viewer Viewer) (CourseList, error) {
	page := filters.Page
	if page < 1 {
		page = 1
	}

	var total int64
	if err := s.baseQuery(filters).Count(&total).Error; err != nil {
		return CourseList{}, err
	}

	q := s.baseQuery(filters).
		Preload("Category").
		Preload("User")

	// courses.id keeps every ordering deterministic across identical calls.
	switch filters.Sort {
	case SortPopular:
		q = q.Order("(SELECT COUNT(*) FROM enrollments WHERE enrollments.course_id = courses.id) DESC, courses.id ASC")
	case SortRating:
		q = q.Order("(SELECT AVG(rating) FROM reviews WHERE reviews.course_id = courses.id AND reviews.is_approved = TRUE) DESC NULLS LAST, courses.id ASC")
	case SortPriceLow:
		q = q.Order("courses.price ASC, courses.id ASC")
	case SortPriceHigh:
		q = q.Order("courses.price DESC, courses.id ASC")
	default:
		q = q.Order("courses.created_at DESC, courses.id ASC")
	}

	var courses []models.Course
	offset := (page - 1) * CatalogPageSize
	if err := q.Offset(offset).Limit(CatalogPageSize).Find(&courses).Error; err != nil {
		return CourseList{}, err
	}

	items, err := s.summarize(courses, viewer)
	if err != nil {
		return CourseList{}, err
	}

	lastPage := int((total + CatalogPageSize - 1) / CatalogPageSize)
	return CourseList{
		Items:       items,
		Page:        page,
		HasNextPage: page < lastPage,
		Filters:     filters.echo(),
	}, nil
}

// GetCourseDetail fetches a single published+approved course by slug with
// its ordered lessons, latest approved reviews and up to 3 random courses
// from the same category.
func (s *CatalogService) GetCourseDetail(slug string, viewer Viewer) (CourseDetail, error) {
	var course models.Course
	err := s.db.
		Where("slug = ?", slug).
		Where("is_published = ? AND is_approved = ?", true, true).
		Preload("Category").
		Preload("User").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.sort_order ASC")
		}).
		First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CourseDetail{}, ErrCourseNotFound
		}
		return CourseDetail{}, err
	}

	detail := CourseDetail{
		Course:       course,
		LessonsCount: int64(len(course.Lessons)),
	}

	if err := s.db.Model(&models.Enrollment{}).
		Where("course_id = ?", course.ID).
		Count(&detail.EnrollmentsCount).Error; err != nil {
		return CourseDetail{}, err
	}

	stats, err := s.reviewStats([]uuid.UUID{course.ID})
	if err != nil {
		return CourseDetail{}, err
	}
	if st, ok := stats[course.ID]; ok {
		detail.AverageRating = st.AverageRating
		detail.ReviewsCount = st.ReviewsCount
	}

	if viewer.Authenticated {
		var n int64
		if err := s.db.Model(&models.Enrollment{}).
			Where("user_id = ? AND course_id = ?", viewer.UserID, course.ID).
			Count(&n).Error; err != nil {
			return CourseDetail{}, err
		}
		detail.IsEnrolled = n > 0
	}

	detail.Reviews = []models.Review{}
	if err := s.db.
		Where("course_id = ? AND is_approved = ?", course.ID, true).
		Preload("User").
		Order("created_at DESC").
		Limit(5).
		Find(&detail.Reviews).Error; err != nil {
		return CourseDetail{}, err
	}

	detail.SimilarCourses = []models.Course{}
	if err := s.db.
		Where("category_id = ? AND id <> ?", course.CategoryID, course.ID).
		Where("is_published = ? AND is_approved = ?", true, true).
		Order("RANDOM()").
		Limit(3).
		Find(&detail.SimilarCourses).Error; err != nil {
		return CourseDetail{}, err
	}

	return detail, nil
}

// FilterOptions returns the data the catalog page needs to render its
// filter controls: all categories ordered by name and the distinct
// non-empty course levels.
func (s *CatalogService) FilterOptions() ([]models.Category, []string, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, nil, err
	}

	var levels []string
	if err := s.db.Model(&models.Course{}).
		Where("level <> ''").
		Distinct().
		Order("level ASC").
		Pluck("level", &levels).Error; err != nil {
		return nil, nil, err
	}
	return categories, levels, nil
}

type courseReviewStats struct {
	CourseID      uuid.UUID
	ReviewsCount  int64
	AverageRating float64
}

func (s *CatalogService) reviewStats(courseIDs []uuid.UUID) (map[uuid.UUID]courseReviewStats, error) {
	stats := make(map[uuid.UUID]courseReviewStats, len(courseIDs))
	if len(courseIDs) == 0 {
		return stats, nil
	}
	var rows []courseReviewStats
	err := s.db.Model(&models.Review{}).
		Select("course_id, COUNT(*) AS reviews_count, AVG(rating) AS average_rating").
		Where("is_approved = ? AND course_id IN ?", true, courseIDs).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats[r.CourseID] = r
	}
	return stats, nil
}

func (s *CatalogService) countByCourse(model interface{}, courseIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		CourseID uuid.UUID
		N        int64
	}
	err := s.db.Model(model).
		Select("course_id, COUNT(*) AS n").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.CourseID] = r.N
	}
	return counts, nil
}

func (s *CatalogService) viewerCourseSet(model interface{}, userID uuid.UUID, courseIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool, len(courseIDs))
	if len(courseIDs) == 0 {
		return set, nil
	}
	var ids []uuid.UUID
	err := s.db.Model(model).
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Pluck("course_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// summarize turns fetched rows into view models, attaching aggregates and
// the viewer-specific flags. Anonymous viewers always get false flags.
func (s *CatalogService) summarize(courses []models.Course, viewer Viewer) ([]CourseSummary, error) {
	ids := make([]uuid.UUID, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}

	lessonCounts, err := s.countByCourse(&models.Lesson{}, ids)
	if err != nil {
		return nil, err
	}
	enrollmentCounts, err := s.countByCourse(&models.Enrollment{}, ids)
	if err != nil {
		return nil, err
	}
	stats, err := s.reviewStats(ids)
	if err != nil {
		return nil, err
	}

	enrolled := map[uuid.UUID]bool{}
	wishlisted := map[uuid.UUID]bool{}
	if viewer.Authenticated {
		if enrolled, err = s.viewerCourseSet(&models.Enrollment{}, viewer.UserID, ids); err != nil {
			return nil, err
		}
		if wishlisted, err = s.viewerCourseSet(&models.Wishlist{}, viewer.UserID, ids); err != nil {
			return nil, err
		}
	}

	items := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		item := CourseSummary{
			ID:               c.ID,
			Title:            c.Title,
			Slug:             c.Slug,
			ShortDescription: c.ShortDescription,
			Thumbnail:        c.Thumbnail,
			Price:            c.Price,
			Level:            c.Level,
			Category:         c.Category,
			Instructor: InstructorSummary{
				ID:               c.User.ID,
				Name:             c.User.Name,
				ProfilePhotoPath: c.User.ProfilePhotoPath,
			},
			LessonsCount:     lessonCounts[c.ID],
			EnrollmentsCount: enrollmentCounts[c.ID],
			IsEnrolled:       enrolled[c.ID],
			IsWishlisted:     wishlisted[c.ID],
			CreatedAt:        c.CreatedAt,
		}
		if st, ok := stats[c.ID]; ok {
			item.AverageRating = st.AverageRating
			item.ReviewsCount = st.ReviewsCount
		}
		items = append(items, item)
	}
	return items, nil
}
