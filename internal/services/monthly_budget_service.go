package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fintrack/internal/allocation"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/events"
	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// monthlyBudgetService handles monthly budget persistence and reconciliation.
type monthlyBudgetService struct {
	db        *gorm.DB
	planner   PlannerServicer
	plans     YearlyPlanServicer
	publisher events.Publisher
}

// NewMonthlyBudgetService creates a new MonthlyBudgetServicer.
func NewMonthlyBudgetService(db *gorm.DB, planner PlannerServicer, plans YearlyPlanServicer, publisher events.Publisher) MonthlyBudgetServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &monthlyBudgetService{db: db, planner: planner, plans: plans, publisher: publisher}
}

// FindMonthlyBudget returns the budget for the period, or nil when none exists.
func (s *monthlyBudgetService) FindMonthlyBudget(userID string, year, month int) (*models.MonthlyBudget, error) {
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}
	budget, err := findMonthlyBudget(s.db, userID, year, month)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

func findMonthlyBudget(db *gorm.DB, userID string, year, month int) (*models.MonthlyBudget, error) {
	var budget models.MonthlyBudget
	err := db.Preload("Items", orderedItems).
		Where("user_id = ? AND year = ? AND month = ?", userID, year, month).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &budget, nil
}

// ListMonthlyBudgets returns every monthly budget of the year ordered by month.
func (s *monthlyBudgetService) ListMonthlyBudgets(userID string, year int) ([]models.MonthlyBudget, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	budgets, err := findMonthlyBudgetsForYear(s.db, userID, year)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

func findMonthlyBudgetsForYear(db *gorm.DB, userID string, year int) ([]models.MonthlyBudget, error) {
	budgets := []models.MonthlyBudget{}
	err := db.Preload("Items", orderedItems).
		Where("user_id = ? AND year = ?", userID, year).
		Order("month ASC").
		Find(&budgets).Error
	return budgets, err
}

// SaveMonthlyBudget creates or replaces the budget for the period. Line items
// come from the allocation engine when in.Recommend is set, otherwise from
// in.Items. The yearly plan summary for the month is refreshed afterwards.
func (s *monthlyBudgetService) SaveMonthlyBudget(userID string, year, month int, in SaveBudgetInput) (*models.MonthlyBudget, error) {
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}
	if !allocation.ValidIncome(in.Income) {
		return nil, apperrors.ErrInvalidIncome
	}

	var items []models.BudgetLineItem
	if in.Recommend {
		result, err := s.planner.Recommend(RecommendationInput{
			Income:    in.Income,
			Variant:   allocation.VariantMonthly,
			Priority:  in.Priority,
			Profile:   in.Profile,
			Selection: in.Selection,
		})
		if err != nil {
			return nil, err
		}
		items = lineItemsFromResult(result, models.FrequencyMonthly)
	} else {
		var err error
		if items, err = prepareItems(in.Items, models.FrequencyMonthly); err != nil {
			return nil, err
		}
	}

	var budget *models.MonthlyBudget
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := findMonthlyBudget(tx, userID, year, month)
		if err != nil {
			return err
		}
		if existing != nil {
			carryActuals(existing.Items, items)
			budget = existing
		} else {
			budget = &models.MonthlyBudget{UserID: userID, Year: year, Month: month}
		}

		budget.Income = models.BudgetIncome{Monthly: in.Income, Annual: in.Income * 12, Sources: in.IncomeSources}
		budget.Priority = string(in.Priority)
		budget.LifeStage = string(in.Profile.LifeStage)
		budget.LivingSituation = string(in.Profile.LivingSituation)
		budget.Notes = in.Notes
		budget.Items = items

		if err := tx.Omit(clause.Associations).Save(budget).Error; err != nil {
			return err
		}
		return replaceLineItems(tx, budget.ID, models.OwnerMonthlyBudget, budget.Items)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("monthly budget saved",
		"user_id", userID,
		"year", year,
		"month", month,
		"items", len(budget.Items),
		"recommended", in.Recommend,
	)

	s.refreshSummary(budget)
	publish(s.publisher, events.New(events.BudgetSaved, events.KindMonthly, userID, year, month))
	return budget, nil
}

// DeleteMonthlyBudget removes the budget and its line items. It reports false
// when there was nothing to delete.
func (s *monthlyBudgetService) DeleteMonthlyBudget(userID string, year, month int) (bool, error) {
	if err := validatePeriod(year, month); err != nil {
		return false, err
	}

	deleted := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var budget models.MonthlyBudget
		if err := tx.Where("user_id = ? AND year = ? AND month = ?", userID, year, month).First(&budget).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("owner_id = ? AND owner_type = ?", budget.ID, models.OwnerMonthlyBudget).
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
	if !deleted {
		return false, nil
	}

	if _, err := s.plans.RemoveMonthlySummary(userID, year, month); err != nil {
		logger.Get().Errorw("failed to remove monthly summary", "error", err, "user_id", userID, "year", year, "month", month)
	} else if _, err := s.plans.GenerateCategoryTrends(userID, year); err != nil {
		logger.Get().Errorw("failed to regenerate category trends", "error", err, "user_id", userID, "year", year)
	}

	publish(s.publisher, events.New(events.BudgetDeleted, events.KindMonthly, userID, year, month))
	return true, nil
}

// SyncMonthlyBudget recomputes actuals from the month's expense transactions
// using exact (category, subcategory) matching.
func (s *monthlyBudgetService) SyncMonthlyBudget(userID string, year, month int) (*models.MonthlyBudget, error) {
	budget, err := s.FindMonthlyBudget(userID, year, month)
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

	matched := reconcile(budget.Items, txs, ExactMatcher{})

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(budget).Error; err != nil {
			return err
		}
		return saveActuals(tx, budget.Items)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("monthly budget synced",
		"user_id", userID,
		"year", year,
		"month", month,
		"transactions", len(txs),
		"matched", matched,
	)

	s.refreshSummary(budget)
	publish(s.publisher, events.New(events.BudgetSynced, events.KindMonthly, userID, year, month))
	return budget, nil
}

// GetMonthlyPerformance returns the budgeted-versus-actual projection.
func (s *monthlyBudgetService) GetMonthlyPerformance(userID string, year, month int) (*models.PerformanceData, error) {
	budget, err := s.FindMonthlyBudget(userID, year, month)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, apperrors.ErrBudgetNotFound
	}
	perf := budget.PerformanceData()
	return &perf, nil
}

// SyncAllMonthlyBudgets reconciles every user's budget for the period. A failure
// for one user is logged and counted; the run continues with the next user.
func (s *monthlyBudgetService) SyncAllMonthlyBudgets(year, month int) (*SyncReport, error) {
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}

	var userIDs []string
	if err := s.db.Model(&models.MonthlyBudget{}).
		Where("year = ? AND month = ?", year, month).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	report := &SyncReport{Year: year, Month: month}
	for _, userID := range userIDs {
		if _, err := s.SyncMonthlyBudget(userID, year, month); err != nil {
			logger.Get().Errorw("bulk sync failed for user", "error", err, "user_id", userID, "year", year, "month", month)
			report.Failed++
			report.UserIDs = append(report.UserIDs, userID)
			continue
		}
		report.Synced++
	}
	return report, nil
}

// refreshSummary pushes the budget into the yearly plan. The budget is already
// committed, so a rollup failure is logged rather than returned.
func (s *monthlyBudgetService) refreshSummary(budget *models.MonthlyBudget) {
	if _, err := s.plans.UpdateMonthlySummary(budget.UserID, budget.Year, budget.Month, budget); err != nil {
		logger.Get().Errorw("failed to update yearly plan summary",
			"error", err,
			"user_id", budget.UserID,
			"year", budget.Year,
			"month", budget.Month,
		)
	}
}
