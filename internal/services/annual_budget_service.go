package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fintrack/internal/allocation"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/events"
	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// annualBudgetService handles annual budget persistence and reconciliation.
type annualBudgetService struct {
	db        *gorm.DB
	planner   PlannerServicer
	publisher events.Publisher
	matcher   Matcher
	now       func() time.Time
}

// NewAnnualBudgetService creates a new AnnualBudgetServicer. With legacyMatching
// set, sync attributes transactions with LegacySubstringMatcher; otherwise it
// uses ExactMatcher like monthly budgets.
func NewAnnualBudgetService(db *gorm.DB, planner PlannerServicer, publisher events.Publisher, legacyMatching bool) AnnualBudgetServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	var matcher Matcher = ExactMatcher{}
	if legacyMatching {
		matcher = LegacySubstringMatcher{}
	}
	return &annualBudgetService{db: db, planner: planner, publisher: publisher, matcher: matcher, now: time.Now}
}

// FindAnnualBudget returns the budget for the year, or nil when none exists.
func (s *annualBudgetService) FindAnnualBudget(userID string, year int) (*models.AnnualBudget, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	budget, err := findAnnualBudget(s.db, userID, year)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

func findAnnualBudget(db *gorm.DB, userID string, year int) (*models.AnnualBudget, error) {
	var budget models.AnnualBudget
	err := db.Preload("Items", orderedItems).
		Where("user_id = ? AND year = ?", userID, year).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &budget, nil
}

// SaveAnnualBudget creates or replaces the budget for the year. in.Income is the
// annual income; the monthly income is derived as annual/12 rounded.
func (s *annualBudgetService) SaveAnnualBudget(userID string, year int, in SaveBudgetInput) (*models.AnnualBudget, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	if !allocation.ValidIncome(in.Income) {
		return nil, apperrors.ErrInvalidIncome
	}

	var items []models.BudgetLineItem
	if in.Recommend {
		result, err := s.planner.Recommend(RecommendationInput{
			Income:    in.Income,
			Variant:   allocation.VariantAnnual,
			Priority:  in.Priority,
			Profile:   in.Profile,
			Selection: in.Selection,
		})
		if err != nil {
			return nil, err
		}
		items = lineItemsFromResult(result, models.FrequencyAnnual)
	} else {
		var err error
		if items, err = prepareItems(in.Items, models.FrequencyAnnual); err != nil {
			return nil, err
		}
	}

	var budget *models.AnnualBudget
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := findAnnualBudget(tx, userID, year)
		if err != nil {
			return err
		}
		if existing != nil {
			carryActuals(existing.Items, items)
			budget = existing
		} else {
			budget = &models.AnnualBudget{UserID: userID, Year: year}
		}

		budget.Income = models.BudgetIncome{Monthly: roundDiv(in.Income, 12), Annual: in.Income, Sources: in.IncomeSources}
		budget.Priority = string(in.Priority)
		budget.LifeStage = string(in.Profile.LifeStage)
		budget.LivingSituation = string(in.Profile.LivingSituation)
		budget.Notes = in.Notes
		budget.Items = items

		if err := tx.Omit(clause.Associations).Save(budget).Error; err != nil {
			return err
		}
		return replaceLineItems(tx, budget.ID, models.OwnerAnnualBudget, budget.Items)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("annual budget saved",
		"user_id", userID,
		"year", year,
		"items", len(budget.Items),
		"recommended", in.Recommend,
	)

	publish(s.publisher, events.New(events.BudgetSaved, events.KindAnnual, userID, year, 0))
	return budget, nil
}

// DeleteAnnualBudget removes the budget and its line items. It reports false
// when there was nothing to delete.
func (s *annualBudgetService) DeleteAnnualBudget(userID string, year int) (bool, error) {
	if err := validateYear(year); err != nil {
		return false, err
	}

	deleted := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var budget models.AnnualBudget
		if err := tx.Where("user_id = ? AND year = ?", userID, year).First(&budget).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("owner_id = ? AND owner_type = ?", budget.ID, models.OwnerAnnualBudget).
			Delete(&models.BudgetLineItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&budget).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if deleted {
		publish(s.publisher, events.New(events.BudgetDeleted, events.KindAnnual, userID, year, 0))
	}
	return deleted, nil
}

// SyncAnnualBudget recomputes actuals from the year's expense transactions.
// Each item's monthly actual is its annual actual averaged over the months
// elapsed so far.
func (s *annualBudgetService) SyncAnnualBudget(userID string, year int) (*models.AnnualBudget, error) {
	budget, err := s.FindAnnualBudget(userID, year)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, apperrors.ErrBudgetNotFound
	}

	start, end := budget.Period()
	txs, err := findTransactionsInRange(s.db, userID, start, end, models.TransactionTypeExpense)
	if err != nil {
		return nil, err
	}

	matched := reconcile(budget.Items, txs, s.matcher)
	elapsed := monthsElapsed(year, s.now())
	for i := range budget.Items {
		if elapsed == 0 {
			budget.Items[i].MonthlyActual = 0
			continue
		}
		budget.Items[i].MonthlyActual = roundDiv(budget.Items[i].AnnualActual, int64(elapsed))
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(budget).Error; err != nil {
			return err
		}
		return saveActuals(tx, budget.Items)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("annual budget synced",
		"user_id", userID,
		"year", year,
		"transactions", len(txs),
		"matched", matched,
		"months_elapsed", elapsed,
	)

	publish(s.publisher, events.New(events.BudgetSynced, events.KindAnnual, userID, year, 0))
	return budget, nil
}

// GetAnnualPerformance returns the budgeted-versus-actual projection.
func (s *annualBudgetService) GetAnnualPerformance(userID string, year int) (*models.PerformanceData, error) {
	budget, err := s.FindAnnualBudget(userID, year)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, apperrors.ErrBudgetNotFound
	}
	perf := budget.PerformanceData()
	return &perf, nil
}

// monthsElapsed counts the months of year that have started by now: 0 for a
// future year, 12 for a past one, and the current month number otherwise.
func monthsElapsed(year int, now time.Time) int {
	now = now.UTC()
	switch {
	case now.Year() < year:
		return 0
	case now.Year() > year:
		return 12
	default:
		return int(now.Month())
	}
}
