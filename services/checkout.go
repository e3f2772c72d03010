package services

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"gorm.io/gorm"

	"github.com/coursehub/e-learning-backend/models"
)

// ErrPromoNotApplicable is returned when a promo code exists but fails one
// of the applicability conditions (or does not exist at all).
var ErrPromoNotApplicable = errors.New("promo code not applicable")

type CheckoutOutcome string

const (
	CheckoutLoginRequired   CheckoutOutcome = "login_required"
	CheckoutOwnCourse       CheckoutOutcome = "own_course"
	CheckoutAlreadyEnrolled CheckoutOutcome = "already_enrolled"
	CheckoutProceed         CheckoutOutcome = "proceed"
)

type CheckoutResult struct {
	Outcome       CheckoutOutcome    `json:"outcome"`
	Message       string             `json:"message,omitempty"`
	RedirectTo    string             `json:"redirect_to,omitempty"`
	Course        *models.Course     `json:"course,omitempty"`
	PromoCodes    []models.PromoCode `json:"promo_codes,omitempty"`
	TaxPercentage float64            `json:"tax_percentage"`
}

type CheckoutService struct {
	db            *gorm.DB
	taxPercentage float64
}

func NewCheckoutService(db *gorm.DB, taxPercentage float64) *CheckoutService {
	return &CheckoutService{db: db, taxPercentage: taxPercentage}
}

// Evaluate decides whether checkout may proceed for the given course and
// viewer. The checks run in fixed precedence order; the first match wins.
// The caller is expected to have resolved the course already.
func (s *CheckoutService) Evaluate(course *models.Course, viewer Viewer) (CheckoutResult, error) {
	if !viewer.Authenticated {
		resume := fmt.Sprintf("/courses/%s/checkout", course.ID)
		return CheckoutResult{
			Outcome:    CheckoutLoginRequired,
			RedirectTo: "/login?redirect_to=" + url.QueryEscape(resume),
		}, nil
	}

	if viewer.UserID == course.UserID {
		return CheckoutResult{
			Outcome:    CheckoutOwnCourse,
			Message:    "You cannot enroll in your own course",
			RedirectTo: fmt.Sprintf("/instructor/courses/%s", course.ID),
		}, nil
	}

	var enrolled int64
	if err := s.db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", viewer.UserID, course.ID).
		Count(&enrolled).Error; err != nil {
		return CheckoutResult{}, err
	}
	if enrolled > 0 {
		return CheckoutResult{
			Outcome:    CheckoutAlreadyEnrolled,
			Message:    "You are already enrolled in this course",
			RedirectTo: "/student/courses/" + course.Slug,
		}, nil
	}

	codes, err := s.ApplicablePromoCodes(course.Price, time.Now())
	if err != nil {
		return CheckoutResult{}, err
	}

	return CheckoutResult{
		Outcome:       CheckoutProceed,
		Course:        course,
		PromoCodes:    codes,
		TaxPercentage: s.taxPercentage,
	}, nil
}

// ApplicablePromoCodes returns every promo code usable for a cart of the
// given value. Date comparisons are date-granular: a code whose end_date
// falls today stays applicable for the rest of the day.
func (s *CheckoutService) ApplicablePromoCodes(price float64, now time.Time) ([]models.PromoCode, error) {
	today := startOfDay(now)
	codes := []models.PromoCode{}
	err := s.db.
		Where("is_active = ?", true).
		Where("start_date < ?", today.AddDate(0, 0, 1)).
		Where("(end_date IS NULL OR end_date >= ?)", today).
		Where("(min_cart_value IS NULL OR min_cart_value <= ?)", price).
		Where("(max_uses IS NULL OR used_count < max_uses)").
		Find(&codes).Error
	return codes, err
}

// ValidatePromoCode re-checks a single code with the same predicate used by
// ApplicablePromoCodes, for order finalization.
func (s *CheckoutService) ValidatePromoCode(code string, price float64, now time.Time) (*models.PromoCode, error) {
	today := startOfDay(now)
	var promo models.PromoCode
	err := s.db.
		Where("code = ?", code).
		Where("is_active = ?", true).
		Where("start_date < ?", today.AddDate(0, 0, 1)).
		Where("(end_date IS NULL OR end_date >= ?)", today).
		Where("(min_cart_value IS NULL OR min_cart_value <= ?)", price).
		Where("(max_uses IS NULL OR used_count < max_uses)").
		First(&promo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromoNotApplicable
		}
		return nil, err
	}
	return &promo, nil
}

// PromoDiscount computes the discount a code grants on the given price.
// Fixed discounts never exceed the price itself.
func PromoDiscount(promo *models.PromoCode, price float64) float64 {
	switch promo.DiscountType {
	case models.DiscountFixed:
		if promo.DiscountValue > price {
			return price
		}
		return promo.DiscountValue
	default:
		return price * promo.DiscountValue / 100
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
