package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/allocation"
	"fintrack/internal/events"
	"fintrack/internal/logger"
	"fintrack/internal/models"
)

const (
	minYear = 2000
	maxYear = 2100
)

func validateYear(year int) error {
	if year < minYear || year > maxYear {
		return apperrors.ErrInvalidPeriod
	}
	return nil
}

func validatePeriod(year, month int) error {
	if err := validateYear(year); err != nil {
		return err
	}
	if month < 1 || month > 12 {
		return apperrors.ErrInvalidPeriod
	}
	return nil
}

// orderedItems preloads line items in their saved order.
func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

type itemKey struct{ category, subcategory string }

// prepareItems validates explicit line items and fills in the derived amount.
// Monthly budgets derive the annual figure as monthly×12; annual budgets derive
// the monthly figure as annual/12 rounded to the nearest unit. A (category,
// subcategory) pair may appear once per budget, and the budget totals must fit
// in int64.
func prepareItems(in []models.BudgetLineItem, frequency string) ([]models.BudgetLineItem, error) {
	items := make([]models.BudgetLineItem, len(in))
	seen := make(map[itemKey]bool, len(in))
	var monthlyTotal, annualTotal int64
	for i, item := range in {
		item.Category = strings.TrimSpace(item.Category)
		item.Subcategory = strings.TrimSpace(item.Subcategory)
		if item.Category == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "every line item needs a category")
		}
		key := itemKey{item.Category, item.Subcategory}
		if seen[key] {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
				fmt.Sprintf("duplicate line item %s/%s", item.Category, item.Subcategory))
		}
		seen[key] = true
		if item.MonthlyBudget < 0 || item.AnnualBudget < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "line item budgets cannot be negative")
		}
		if item.MonthlyBudget > allocation.MaxIncome || item.AnnualBudget > allocation.MaxIncome {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "line item budget is too large")
		}
		switch frequency {
		case models.FrequencyAnnual:
			if item.MonthlyBudget == 0 {
				item.MonthlyBudget = roundDiv(item.AnnualBudget, 12)
			}
		default:
			if item.AnnualBudget == 0 {
				item.AnnualBudget = item.MonthlyBudget * 12
			}
		}
		if item.MonthlyBudget > math.MaxInt64-monthlyTotal || item.AnnualBudget > math.MaxInt64-annualTotal {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "line item budgets exceed the supported total")
		}
		monthlyTotal += item.MonthlyBudget
		annualTotal += item.AnnualBudget
		if item.Frequency == "" {
			item.Frequency = frequency
		}
		item.ID = ""
		item.MonthlyActual = 0
		item.AnnualActual = 0
		item.Position = i
		items[i] = item
	}
	return items, nil
}

// carryActuals copies reconciled actuals from the previous items onto new items
// with the same (category, subcategory), so a re-save does not wipe the last sync.
func carryActuals(previous, next []models.BudgetLineItem) {
	prior := make(map[itemKey]models.BudgetLineItem, len(previous))
	for _, item := range previous {
		prior[itemKey{item.Category, item.Subcategory}] = item
	}
	for i := range next {
		if p, ok := prior[itemKey{next[i].Category, next[i].Subcategory}]; ok {
			next[i].MonthlyActual = p.MonthlyActual
			next[i].AnnualActual = p.AnnualActual
		}
	}
}

// replaceLineItems swaps an owner's persisted line items for items.
func replaceLineItems(tx *gorm.DB, ownerID, ownerType string, items []models.BudgetLineItem) error {
	if err := tx.Where("owner_id = ? AND owner_type = ?", ownerID, ownerType).
		Delete(&models.BudgetLineItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = ""
		items[i].OwnerID = ownerID
		items[i].OwnerType = ownerType
		items[i].Position = i
	}
	return tx.Create(&items).Error
}

// saveActuals writes the reconciled actual columns of each item.
func saveActuals(tx *gorm.DB, items []models.BudgetLineItem) error {
	for _, item := range items {
		if err := tx.Model(&models.BudgetLineItem{}).
			Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"monthly_actual": item.MonthlyActual,
				"annual_actual":  item.AnnualActual,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

// publish sends a budget event. Delivery failures are logged, never returned.
func publish(p events.Publisher, e events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(context.Background(), e); err != nil {
		logger.Get().Warnw("failed to publish budget event",
			"error", err,
			"type", string(e.Type),
			"user_id", e.UserID,
			"year", e.Year,
			"month", e.Month,
		)
	}
}

func roundDiv(n, d int64) int64 {
	if n >= 0 {
		return (n + d/2) / d
	}
	return -((-n + d/2) / d)
}
