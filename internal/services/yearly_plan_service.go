package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/events"
	"fintrack/internal/models"
)

// Trend classification thresholds, relative to the first-half mean.
const (
	minTrendMonths    = 3
	volatileThreshold = 0.2
	increaseThreshold = 1.1
	decreaseThreshold = 0.9
)

// yearlyPlanService maintains the per-year rollup of monthly budgets.
type yearlyPlanService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

// NewYearlyPlanService creates a new YearlyPlanServicer.
func NewYearlyPlanService(db *gorm.DB, publisher events.Publisher) YearlyPlanServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &yearlyPlanService{db: db, publisher: publisher, now: time.Now}
}

// GetYearlyPlan returns the plan for the year, or nil when none exists.
func (s *yearlyPlanService) GetYearlyPlan(userID string, year int) (*models.YearlyPlan, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	plan, err := findYearlyPlan(s.db, userID, year)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return plan, nil
}

func findYearlyPlan(db *gorm.DB, userID string, year int) (*models.YearlyPlan, error) {
	var plan models.YearlyPlan
	if err := db.Where("user_id = ? AND year = ?", userID, year).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// UpdateMonthlySummary upserts the month's summary and recomputes the overview.
func (s *yearlyPlanService) UpdateMonthlySummary(userID string, year, month int, budget *models.MonthlyBudget) (*models.YearlyPlan, error) {
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a monthly budget is required")
	}

	summary := models.NewMonthlySummary(budget)
	summary.Month = month

	plan, err := s.mutate(userID, year, true, func(p *models.YearlyPlan) bool {
		p.UpsertSummary(summary)
		return true
	})
	if err != nil {
		return nil, err
	}
	publish(s.publisher, events.New(events.PlanUpdated, events.KindPlan, userID, year, month))
	return plan, nil
}

// RemoveMonthlySummary drops the month from the plan. It returns nil when the
// user has no plan for the year.
func (s *yearlyPlanService) RemoveMonthlySummary(userID string, year, month int) (*models.YearlyPlan, error) {
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}
	return s.mutate(userID, year, false, func(p *models.YearlyPlan) bool {
		return p.RemoveSummary(month)
	})
}

// GenerateCategoryTrends regroups every monthly budget of the year by category
// and classifies each category's budgeted series. It returns nil when the user
// has neither a plan nor any monthly budget for the year.
func (s *yearlyPlanService) GenerateCategoryTrends(userID string, year int) (*models.YearlyPlan, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}

	budgets, err := findMonthlyBudgetsForYear(s.db, userID, year)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	trends := buildCategoryTrends(budgets)
	generatedAt := s.now().UTC()

	plan, err := s.mutate(userID, year, len(budgets) > 0, func(p *models.YearlyPlan) bool {
		p.CategoryTrends = trends
		p.TrendsGeneratedAt = &generatedAt
		return true
	})
	if err != nil || plan == nil {
		return plan, err
	}
	publish(s.publisher, events.New(events.PlanUpdated, events.KindPlan, userID, year, 0))
	return plan, nil
}

// mutate loads (or, when create is set, initializes) the plan inside a database
// transaction, applies fn and saves the plan if fn reports a change.
func (s *yearlyPlanService) mutate(userID string, year int, create bool, fn func(*models.YearlyPlan) bool) (*models.YearlyPlan, error) {
	var plan *models.YearlyPlan
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		plan, err = findYearlyPlan(tx, userID, year)
		if err != nil {
			return err
		}
		if plan == nil {
			if !create {
				return nil
			}
			plan = &models.YearlyPlan{UserID: userID, Year: year}
		}
		if !fn(plan) {
			return nil
		}
		if plan.MonthlySummaries == nil {
			plan.MonthlySummaries = []models.MonthlySummary{}
		}
		if plan.CategoryTrends == nil {
			plan.CategoryTrends = []models.CategoryTrend{}
		}
		return tx.Save(plan).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return plan, nil
}

// buildCategoryTrends groups line items by category across months, in the order
// categories first appear.
func buildCategoryTrends(budgets []models.MonthlyBudget) []models.CategoryTrend {
	index := map[string]int{}
	trends := []models.CategoryTrend{}

	for _, b := range budgets {
		var order []string
		perMonth := map[string]models.MonthAmount{}
		for _, item := range b.Items {
			amount, ok := perMonth[item.Category]
			if !ok {
				order = append(order, item.Category)
				amount.Month = b.Month
			}
			amount.Budgeted += item.MonthlyBudget
			amount.Actual += item.MonthlyActual
			perMonth[item.Category] = amount
		}

		for _, category := range order {
			i, ok := index[category]
			if !ok {
				i = len(trends)
				index[category] = i
				trends = append(trends, models.CategoryTrend{Category: category})
			}
			trends[i].Months = append(trends[i].Months, perMonth[category])
		}
	}

	for i := range trends {
		series := make([]int64, len(trends[i].Months))
		for j, m := range trends[i].Months {
			series[j] = m.Budgeted
		}
		trends[i].Trend = ClassifyTrend(series)
	}
	return trends
}

// ClassifyTrend compares the mean of the first ⌊n/2⌋ values with the mean of the
// rest. Series shorter than three values are reported as stable.
func ClassifyTrend(series []int64) models.Trend {
	if len(series) < minTrendMonths {
		return models.TrendStable
	}

	half := len(series) / 2
	first := mean(series[:half])
	second := mean(series[half:])

	switch {
	case math.Abs(second-first) > volatileThreshold*first:
		return models.TrendVolatile
	case second > increaseThreshold*first:
		return models.TrendIncreasing
	case second < decreaseThreshold*first:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

func mean(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}
