package models

import (
	"time"

	"fintrack/internal/uuid"

	"gorm.io/gorm"
)

// Polymorphic owner types for budget line items.
const (
	OwnerMonthlyBudget = "monthly_budgets"
	OwnerAnnualBudget  = "annual_budgets"
)

// Line item frequencies.
const (
	FrequencyMonthly = "monthly"
	FrequencyAnnual  = "annual"
)

// BudgetLineItem is one category/subcategory allocation inside a budget.
// Amounts are in minor currency units.
type BudgetLineItem struct {
	ID            string `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID       string `gorm:"type:uuid;not null;index:idx_budget_line_items_owner;uniqueIndex:idx_budget_line_items_pair,priority:1" json:"-"`
	OwnerType     string `gorm:"not null;index:idx_budget_line_items_owner;uniqueIndex:idx_budget_line_items_pair,priority:2" json:"-"`
	Position      int    `gorm:"not null;default:0" json:"-"`
	Category      string `gorm:"not null;uniqueIndex:idx_budget_line_items_pair,priority:3" json:"category"`
	Subcategory   string `gorm:"not null;default:'';uniqueIndex:idx_budget_line_items_pair,priority:4" json:"subcategory"`
	MonthlyBudget int64  `gorm:"not null;default:0" json:"monthly_budget"`
	AnnualBudget  int64  `gorm:"not null;default:0" json:"annual_budget"`
	MonthlyActual int64  `gorm:"not null;default:0" json:"monthly_actual"`
	AnnualActual  int64  `gorm:"not null;default:0" json:"annual_actual"`
	IsEssential   bool   `gorm:"not null;default:false" json:"is_essential"`
	Frequency     string `gorm:"not null;default:monthly" json:"frequency"`
}

// BeforeCreate hook generates a UUIDv7 for new line items
func (i *BudgetLineItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New()
	}
	return nil
}

// IncomeSource is a named contribution to a budget's income.
type IncomeSource struct {
	Name      string `json:"name"`
	Amount    int64  `json:"amount"`
	Frequency string `json:"frequency,omitempty"`
}

// BudgetIncome is the income a budget plans against.
type BudgetIncome struct {
	Monthly int64          `gorm:"not null;default:0" json:"monthly"`
	Annual  int64          `gorm:"not null;default:0" json:"annual"`
	Sources []IncomeSource `gorm:"serializer:json;type:text" json:"sources"`
}

// BudgetTotals are derived from the line items; see RecomputeTotals.
type BudgetTotals struct {
	MonthlyBudgeted int64 `gorm:"not null;default:0" json:"monthly_budgeted"`
	AnnualBudgeted  int64 `gorm:"not null;default:0" json:"annual_budgeted"`
	MonthlyActual   int64 `gorm:"not null;default:0" json:"monthly_actual"`
	AnnualActual    int64 `gorm:"not null;default:0" json:"annual_actual"`
}

// MonthlyBudget is a user's plan for one calendar month.
type MonthlyBudget struct {
	Record
	UserID          string           `gorm:"type:uuid;not null;uniqueIndex:idx_monthly_budgets_period" json:"user_id"`
	Year            int              `gorm:"not null;uniqueIndex:idx_monthly_budgets_period" json:"year"`
	Month           int              `gorm:"not null;uniqueIndex:idx_monthly_budgets_period" json:"month"`
	Income          BudgetIncome     `gorm:"embedded;embeddedPrefix:income_" json:"income"`
	Totals          BudgetTotals     `gorm:"embedded;embeddedPrefix:total_" json:"totals"`
	Priority        string           `json:"priority,omitempty"`
	LifeStage       string           `json:"life_stage,omitempty"`
	LivingSituation string           `json:"living_situation,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Items           []BudgetLineItem `gorm:"polymorphic:Owner;polymorphicValue:monthly_budgets" json:"categories"`
}

// AnnualBudget is a user's plan for one calendar year.
type AnnualBudget struct {
	Record
	UserID          string           `gorm:"type:uuid;not null;uniqueIndex:idx_annual_budgets_period" json:"user_id"`
	Year            int              `gorm:"not null;uniqueIndex:idx_annual_budgets_period" json:"year"`
	Income          BudgetIncome     `gorm:"embedded;embeddedPrefix:income_" json:"income"`
	Totals          BudgetTotals     `gorm:"embedded;embeddedPrefix:total_" json:"totals"`
	Priority        string           `json:"priority,omitempty"`
	LifeStage       string           `json:"life_stage,omitempty"`
	LivingSituation string           `json:"living_situation,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Items           []BudgetLineItem `gorm:"polymorphic:Owner;polymorphicValue:annual_budgets" json:"categories"`
}

// RecomputeTotals sums the line items into Totals.
func (b *MonthlyBudget) RecomputeTotals() {
	b.Totals = sumLineItems(b.Items)
}

// BeforeSave keeps Totals in step with the line items on every persist.
func (b *MonthlyBudget) BeforeSave(tx *gorm.DB) error {
	b.RecomputeTotals()
	return nil
}

// Period returns the first and last instant of the budget's month in UTC.
func (b *MonthlyBudget) Period() (time.Time, time.Time) {
	start := time.Date(b.Year, time.Month(b.Month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// CategoryPerformance projects monthly budgeted vs actual per line item.
func (b *MonthlyBudget) CategoryPerformance() []CategoryPerformance {
	out := make([]CategoryPerformance, len(b.Items))
	for i, item := range b.Items {
		out[i] = newCategoryPerformance(item, item.MonthlyBudget, item.MonthlyActual)
	}
	return out
}

// PerformanceData returns the per-item projection together with monthly totals.
func (b *MonthlyBudget) PerformanceData() PerformanceData {
	return newPerformanceData(b.CategoryPerformance(), b.Totals.MonthlyBudgeted, b.Totals.MonthlyActual)
}

// RecomputeTotals sums the line items into Totals.
func (b *AnnualBudget) RecomputeTotals() {
	b.Totals = sumLineItems(b.Items)
}

// BeforeSave keeps Totals in step with the line items on every persist.
func (b *AnnualBudget) BeforeSave(tx *gorm.DB) error {
	b.RecomputeTotals()
	return nil
}

// Period returns the first and last instant of the budget's year in UTC.
func (b *AnnualBudget) Period() (time.Time, time.Time) {
	start := time.Date(b.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0).Add(-time.Nanosecond)
}

// CategoryPerformance projects annual budgeted vs actual per line item.
func (b *AnnualBudget) CategoryPerformance() []CategoryPerformance {
	out := make([]CategoryPerformance, len(b.Items))
	for i, item := range b.Items {
		out[i] = newCategoryPerformance(item, item.AnnualBudget, item.AnnualActual)
	}
	return out
}

// PerformanceData returns the per-item projection together with annual totals.
func (b *AnnualBudget) PerformanceData() PerformanceData {
	return newPerformanceData(b.CategoryPerformance(), b.Totals.AnnualBudgeted, b.Totals.AnnualActual)
}

// ResetActuals zeroes the actual amounts of every line item.
func ResetActuals(items []BudgetLineItem) {
	for i := range items {
		items[i].MonthlyActual = 0
		items[i].AnnualActual = 0
	}
}

func sumLineItems(items []BudgetLineItem) BudgetTotals {
	var t BudgetTotals
	for _, item := range items {
		t.MonthlyBudgeted += item.MonthlyBudget
		t.AnnualBudgeted += item.AnnualBudget
		t.MonthlyActual += item.MonthlyActual
		t.AnnualActual += item.AnnualActual
	}
	return t
}

// CategoryPerformance compares one line item's plan with what was spent.
type CategoryPerformance struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	IsEssential bool    `json:"is_essential"`
	Budgeted    int64   `json:"budgeted"`
	Actual      int64   `json:"actual"`
	Variance    int64   `json:"variance"`
	PercentUsed float64 `json:"percent_used"`
	OverBudget  bool    `json:"over_budget"`
}

// PerformanceData is the read-side view of a whole budget.
type PerformanceData struct {
	Categories    []CategoryPerformance `json:"categories"`
	TotalBudgeted int64                 `json:"total_budgeted"`
	TotalActual   int64                 `json:"total_actual"`
	TotalVariance int64                 `json:"total_variance"`
	PercentUsed   float64               `json:"percent_used"`
	OverBudget    bool                  `json:"over_budget"`
}

func newCategoryPerformance(item BudgetLineItem, budgeted, actual int64) CategoryPerformance {
	return CategoryPerformance{
		Category:    item.Category,
		Subcategory: item.Subcategory,
		IsEssential: item.IsEssential,
		Budgeted:    budgeted,
		Actual:      actual,
		Variance:    actual - budgeted,
		PercentUsed: percentUsed(budgeted, actual),
		OverBudget:  actual > budgeted,
	}
}

func newPerformanceData(categories []CategoryPerformance, budgeted, actual int64) PerformanceData {
	return PerformanceData{
		Categories:    categories,
		TotalBudgeted: budgeted,
		TotalActual:   actual,
		TotalVariance: actual - budgeted,
		PercentUsed:   percentUsed(budgeted, actual),
		OverBudget:    actual > budgeted,
	}
}

func percentUsed(budgeted, actual int64) float64 {
	if budgeted == 0 {
		return 0
	}
	return float64(actual) / float64(budgeted) * 100
}
