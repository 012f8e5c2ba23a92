package services

import (
	"time"

	"fintrack/internal/allocation"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	UpdatePlanningDefaults(userID string, defaults models.PlanningDefaults) (*models.User, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate    *time.Time
	ToDate      *time.Time
	Type        *models.TransactionType
	Category    *string
	Subcategory *string
	MinAmount   *int64
	MaxAmount   *int64
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, transactionType models.TransactionType, category, subcategory string, amount int64, description string, date time.Time) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	FindTransactionsInRange(userID string, start, end time.Time, transactionType models.TransactionType) ([]models.Transaction, error)
}

// RecommendationInput is what the planner needs to run the allocation engine.
type RecommendationInput struct {
	Income    int64
	Variant   allocation.Variant
	Priority  allocation.Priority
	Profile   allocation.Profile
	Selection allocation.Selection
}

// PlannerServicer wraps the allocation engine with input validation and logging.
type PlannerServicer interface {
	Recommend(in RecommendationInput) (*allocation.Result, error)
	Rules() []allocation.Rule
}

// SaveBudgetInput carries a budget upsert. Income is monthly for monthly budgets
// and annual for annual budgets. When Recommend is set the line items are
// produced by the allocation engine from Priority, Profile and Selection and
// Items is ignored.
type SaveBudgetInput struct {
	Income        int64
	IncomeSources []models.IncomeSource
	Items         []models.BudgetLineItem
	Recommend     bool
	Priority      allocation.Priority
	Profile       allocation.Profile
	Selection     allocation.Selection
	Notes         string
}

// MonthlyBudgetServicer defines the contract for monthly budgets.
type MonthlyBudgetServicer interface {
	FindMonthlyBudget(userID string, year, month int) (*models.MonthlyBudget, error)
	ListMonthlyBudgets(userID string, year int) ([]models.MonthlyBudget, error)
	SaveMonthlyBudget(userID string, year, month int, in SaveBudgetInput) (*models.MonthlyBudget, error)
	DeleteMonthlyBudget(userID string, year, month int) (bool, error)
	SyncMonthlyBudget(userID string, year, month int) (*models.MonthlyBudget, error)
	GetMonthlyPerformance(userID string, year, month int) (*models.PerformanceData, error)
	SyncAllMonthlyBudgets(year, month int) (*SyncReport, error)
}

// AnnualBudgetServicer defines the contract for annual budgets.
type AnnualBudgetServicer interface {
	FindAnnualBudget(userID string, year int) (*models.AnnualBudget, error)
	SaveAnnualBudget(userID string, year int, in SaveBudgetInput) (*models.AnnualBudget, error)
	DeleteAnnualBudget(userID string, year int) (bool, error)
	SyncAnnualBudget(userID string, year int) (*models.AnnualBudget, error)
	GetAnnualPerformance(userID string, year int) (*models.PerformanceData, error)
}

// YearlyPlanServicer defines the contract for the yearly rollup.
type YearlyPlanServicer interface {
	GetYearlyPlan(userID string, year int) (*models.YearlyPlan, error)
	UpdateMonthlySummary(userID string, year, month int, budget *models.MonthlyBudget) (*models.YearlyPlan, error)
	RemoveMonthlySummary(userID string, year, month int) (*models.YearlyPlan, error)
	GenerateCategoryTrends(userID string, year int) (*models.YearlyPlan, error)
}

// SyncReport summarizes a bulk reconciliation run.
type SyncReport struct {
	Year    int      `json:"year"`
	Month   int      `json:"month"`
	Synced  int      `json:"synced"`
	Failed  int      `json:"failed"`
	UserIDs []string `json:"failed_user_ids,omitempty"`
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
