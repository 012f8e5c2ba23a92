package models

import (
	"sort"
	"time"
)

// Trend classifies how a category's spending moved across the year.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
	TrendVolatile   Trend = "volatile"
)

// MonthlySummary is the rolled-up view of one monthly budget.
type MonthlySummary struct {
	Month            int   `json:"month"`
	Income           int64 `json:"income"`
	BudgetedExpenses int64 `json:"budgeted_expenses"`
	ActualExpenses   int64 `json:"actual_expenses"`
	Savings          int64 `json:"savings"`
	Variance         int64 `json:"variance"`
}

// NewMonthlySummary summarizes a monthly budget. Savings is income minus actual
// spending; Variance is budgeted minus actual, so underspending is positive.
func NewMonthlySummary(b *MonthlyBudget) MonthlySummary {
	return MonthlySummary{
		Month:            b.Month,
		Income:           b.Income.Monthly,
		BudgetedExpenses: b.Totals.MonthlyBudgeted,
		ActualExpenses:   b.Totals.MonthlyActual,
		Savings:          b.Income.Monthly - b.Totals.MonthlyActual,
		Variance:         b.Totals.MonthlyBudgeted - b.Totals.MonthlyActual,
	}
}

// MonthAmount is one month of a category trend.
type MonthAmount struct {
	Month    int   `json:"month"`
	Budgeted int64 `json:"budgeted"`
	Actual   int64 `json:"actual"`
}

// CategoryTrend is a category's month-by-month amounts. Trend is classified from
// the budgeted series.
type CategoryTrend struct {
	Category string        `json:"category"`
	Months   []MonthAmount `json:"months"`
	Trend    Trend         `json:"trend"`
}

// YearlyOverview aggregates all monthly summaries of a plan.
type YearlyOverview struct {
	TotalIncome   int64 `gorm:"not null;default:0" json:"total_income"`
	TotalBudgeted int64 `gorm:"not null;default:0" json:"total_budgeted"`
	TotalExpenses int64 `gorm:"not null;default:0" json:"total_expenses"`
	TotalSavings  int64 `gorm:"not null;default:0" json:"total_savings"`
	MonthsTracked int   `gorm:"not null;default:0" json:"months_tracked"`
}

// YearlyPlan rolls a user's monthly budgets up into a yearly view.
type YearlyPlan struct {
	Record
	UserID            string           `gorm:"type:uuid;not null;uniqueIndex:idx_yearly_plans_period" json:"user_id"`
	Year              int              `gorm:"not null;uniqueIndex:idx_yearly_plans_period" json:"year"`
	MonthlySummaries  []MonthlySummary `gorm:"serializer:json;type:text" json:"monthly_summaries"`
	CategoryTrends    []CategoryTrend  `gorm:"serializer:json;type:text" json:"category_trends"`
	Overview          YearlyOverview   `gorm:"embedded;embeddedPrefix:overview_" json:"overview"`
	TrendsGeneratedAt *time.Time       `json:"trends_generated_at,omitempty"`
}

// UpsertSummary replaces the summary for s.Month, or inserts it keeping months ordered.
func (p *YearlyPlan) UpsertSummary(s MonthlySummary) {
	for i := range p.MonthlySummaries {
		if p.MonthlySummaries[i].Month == s.Month {
			p.MonthlySummaries[i] = s
			p.RecomputeOverview()
			return
		}
	}
	p.MonthlySummaries = append(p.MonthlySummaries, s)
	sort.Slice(p.MonthlySummaries, func(i, j int) bool {
		return p.MonthlySummaries[i].Month < p.MonthlySummaries[j].Month
	})
	p.RecomputeOverview()
}

// RemoveSummary drops the summary for month. It reports whether one was removed.
func (p *YearlyPlan) RemoveSummary(month int) bool {
	for i := range p.MonthlySummaries {
		if p.MonthlySummaries[i].Month == month {
			p.MonthlySummaries = append(p.MonthlySummaries[:i], p.MonthlySummaries[i+1:]...)
			p.RecomputeOverview()
			return true
		}
	}
	return false
}

// RecomputeOverview re-derives Overview from the monthly summaries.
func (p *YearlyPlan) RecomputeOverview() {
	var o YearlyOverview
	for _, s := range p.MonthlySummaries {
		o.TotalIncome += s.Income
		o.TotalBudgeted += s.BudgetedExpenses
		o.TotalExpenses += s.ActualExpenses
		o.TotalSavings += s.Savings
	}
	o.MonthsTracked = len(p.MonthlySummaries)
	p.Overview = o
}
