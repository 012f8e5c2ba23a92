package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/allocation"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// BudgetHandler handles monthly and annual budget requests and recommendations.
type BudgetHandler struct {
	monthlyService services.MonthlyBudgetServicer
	annualService  services.AnnualBudgetServicer
	plannerService services.PlannerServicer
	userService    services.UserServicer
	auditService   services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(
	monthlyService services.MonthlyBudgetServicer,
	annualService services.AnnualBudgetServicer,
	plannerService services.PlannerServicer,
	userService services.UserServicer,
	auditService services.AuditServicer,
) *BudgetHandler {
	return &BudgetHandler{
		monthlyService: monthlyService,
		annualService:  annualService,
		plannerService: plannerService,
		userService:    userService,
		auditService:   auditService,
	}
}

// applyPlanningDefaults fills an empty priority or profile field from the
// caller's saved planning defaults.
func (h *BudgetHandler) applyPlanningDefaults(userID string, priority allocation.Priority, profile allocation.Profile) (allocation.Priority, allocation.Profile, error) {
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return "", allocation.Profile{}, err
	}
	priority, profile = user.Planning.Apply(priority, profile)
	return priority, profile, nil
}

// saveInput converts req, resolving planning defaults when the line items are
// to be recommended.
func (h *BudgetHandler) saveInput(userID string, req SaveBudgetRequest) (services.SaveBudgetInput, error) {
	in := req.toInput()
	if !in.Recommend {
		return in, nil
	}
	var err error
	in.Priority, in.Profile, err = h.applyPlanningDefaults(userID, in.Priority, in.Profile)
	return in, err
}

// RecommendationRequest represents the request payload for a budget recommendation.
type RecommendationRequest struct {
	Income          int64                      `json:"income"`
	Variant         allocation.Variant         `json:"variant" binding:"omitempty,budget_variant"`
	Priority        allocation.Priority        `json:"priority" binding:"omitempty,budget_priority"`
	LifeStage       allocation.LifeStage       `json:"life_stage" binding:"omitempty,life_stage"`
	LivingSituation allocation.LivingSituation `json:"living_situation" binding:"omitempty,living_situation"`
	Selection       allocation.Selection       `json:"selection"`
}

// LineItemRequest is one explicit budget line.
type LineItemRequest struct {
	Category      string `json:"category" binding:"required,max=100"`
	Subcategory   string `json:"subcategory" binding:"max=100"`
	MonthlyBudget int64  `json:"monthly_budget" binding:"gte=0"`
	AnnualBudget  int64  `json:"annual_budget" binding:"gte=0"`
	IsEssential   bool   `json:"is_essential"`
	Frequency     string `json:"frequency" binding:"omitempty,oneof=monthly annual"`
}

// SaveBudgetRequest represents the request payload for creating or replacing a
// budget. Income is monthly for monthly budgets and annual for annual budgets.
// With recommend set the line items are generated from priority, profile and
// selection, and categories is ignored.
type SaveBudgetRequest struct {
	Income          int64                      `json:"income"`
	IncomeSources   []models.IncomeSource      `json:"income_sources"`
	Categories      []LineItemRequest          `json:"categories" binding:"omitempty,dive"`
	Recommend       bool                       `json:"recommend"`
	Priority        allocation.Priority        `json:"priority" binding:"omitempty,budget_priority"`
	LifeStage       allocation.LifeStage       `json:"life_stage" binding:"omitempty,life_stage"`
	LivingSituation allocation.LivingSituation `json:"living_situation" binding:"omitempty,living_situation"`
	Selection       allocation.Selection       `json:"selection"`
	Notes           string                     `json:"notes" binding:"max=1000"`
}

func (r SaveBudgetRequest) toInput() services.SaveBudgetInput {
	items := make([]models.BudgetLineItem, len(r.Categories))
	for i, c := range r.Categories {
		items[i] = models.BudgetLineItem{
			Category:      c.Category,
			Subcategory:   c.Subcategory,
			MonthlyBudget: c.MonthlyBudget,
			AnnualBudget:  c.AnnualBudget,
			IsEssential:   c.IsEssential,
			Frequency:     c.Frequency,
		}
	}
	return services.SaveBudgetInput{
		Income:        r.Income,
		IncomeSources: r.IncomeSources,
		Items:         items,
		Recommend:     r.Recommend,
		Priority:      r.Priority,
		Profile:       allocation.Profile{LifeStage: r.LifeStage, LivingSituation: r.LivingSituation},
		Selection:     r.Selection,
		Notes:         r.Notes,
	}
}

// Recommend handles budget recommendation requests.
// @Summary     Recommend a budget
// @Description Allocate an income across the selected categories without saving anything
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RecommendationRequest true "Income, priority, profile and category selection"
// @Success     200 {object} allocation.Result "Recommended line items"
// @Failure     400 {object} ErrorResponse "Invalid income, priority or profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets/recommendations [post]
func (h *BudgetHandler) Recommend(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	priority, profile, err := h.applyPlanningDefaults(userID, req.Priority,
		allocation.Profile{LifeStage: req.LifeStage, LivingSituation: req.LivingSituation})
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.plannerService.Recommend(services.RecommendationInput{
		Income:    req.Income,
		Variant:   req.Variant,
		Priority:  priority,
		Profile:   profile,
		Selection: req.Selection,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendation": result})
}

// GetMonthlyBudget handles retrieving the budget for a month.
// @Summary     Get monthly budget
// @Description Get the budget for a month; budget is null when none has been saved
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       year  path int true "Year"
// @Param       month path int true "Month (1-12)"
// @Success     200 {object} models.MonthlyBudget "Monthly budget or null"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets/monthly/{year}/{month} [get]
func (h *BudgetHandler) GetMonthlyBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, month, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.monthlyService.FindMonthlyBudget(userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// ListMonthlyBudgets handles listing a year's monthly budgets.
// @Summary     List monthly budgets
// @Description List every monthly budget of a year ordered by month
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       year path int true "Year"
// @Success     200 {object} map[string][]models.MonthlyBudget "Monthly budgets"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets/monthly/{year} [get]
func (h *BudgetHandler) ListMonthlyBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := parseYear(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.monthlyService.ListMonthlyBudgets(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}

// SaveMonthlyBudget handles creating or replacing the budget for a month.
// @Summary     Save monthly budget
// @Description Create or replace the budget for a month, from explicit line items or a recommendation
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       year    path int               true "Year"
// @Param       month   path int               true "Month (1-12)"
// @Param       request body SaveBudgetRequest true "Budget details"
// @Success     200 {object} models.MonthlyBudget "Saved budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/monthly/{year}/{month} [put]
func (h *BudgetHandler) SaveMonthlyBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, month, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SaveBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	in, err := h.saveInput(userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.monthlyService.SaveMonthlyBudget(userID, year, month, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditSaveBudget, models.OwnerMonthlyBudget, budget.ID, c.ClientIP(),
		map[string]interface{}{"year": year, "month": month, "income": req.Income, "recommend": req.Recommend})

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteMonthlyBudget handles deleting the budget for a month.
// @Summary     Delete monthly budget
// @Description Delete the budget for a month; deleted is false when there was none
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       year  path int true "Year"
// @Param       month path int true "Month (1-12)"
// @Success     200 {object} map[string]bool "Deletion result"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets/monthly/{year}/{month} [delete]
func (h *BudgetHandler) DeleteMonthlyBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, month, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	deleted, err := h.monthlyService.DeleteMonthlyBudget(userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if deleted {
		h.auditService.Log(userID, services.AuditDeleteBudget, models.OwnerMonthlyBudget,
			fmt.Sprintf("%04d-%02d", year, month), c.ClientIP(), nil)
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// SyncMonthlyBudget handles reconciling a month's budget against its transactions.
// @Summary     Sync monthly budget
// @Description Recompute actual spending from the month's expense transactions
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       year  path int true "Year"
// @Param       month path int true "Month (1-12)"
// @Success     200 {object} models.MonthlyBudget "Reconciled budget"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/monthly/{year}/{month}/sync [post]
func (h *BudgetHandler) SyncMonthlyBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, month, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.monthlyService.SyncMonthlyBudget(userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditSyncBudget, models.OwnerMonthlyBudget, budget.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// GetMonthlyPerformance handles the budgeted-versus-actual view of a month.
// @Summary     Monthly budget performance
// @Description Per-category budgeted, actual, variance and percent used for a month
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       year  path int true "Year"
// @Param       month path int true "Month (1-12)"
// @Success     200 {object} models.PerformanceData "Performance"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/monthly/{year}/{month}/performance [get]
func (h *BudgetHandler) GetMonthlyPerformance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, month, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	perf, err := h.monthlyService.GetMonthlyPerformance(userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"performance": perf})
}

// GetAnnualBudget handles retrieving the budget for a year.
// @Summary     Get annual budget
// @Description Get the annual budget for a year; budget is null when none has been saved
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       year path int true "Year"
// @Success     200 {object} models.AnnualBudget "Annual budget or null"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets/annual/{year} [get]
func (h *BudgetHandler) GetAnnualBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := parseYear(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.annualService.FindAnnualBudget(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// SaveAnnualBudget handles creating or replacing the budget for a year.
// @Summary     Save annual budget
// @Description Create or replace the annual budget; income is the annual figure
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       year    path int               true "Year"
// @Param       request body SaveBudgetRequest true "Budget details"
// @Success     200 {object} models.AnnualBudget "Saved budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/annual/{year} [put]
func (h *BudgetHandler) SaveAnnualBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := parseYear(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SaveBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	in, err := h.saveInput(userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.annualService.SaveAnnualBudget(userID, year, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditSaveBudget, models.OwnerAnnualBudget, budget.ID, c.ClientIP(),
		map[string]interface{}{"year": year, "income": req.Income, "recommend": req.Recommend})

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteAnnualBudget handles deleting the budget for a year.
// @Summary     Delete annual budget
// @Description Delete the annual budget; deleted is false when there was none
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       year path int true "Year"
// @Success     200 {object} map[string]bool "Deletion result"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets/annual/{year} [delete]
func (h *BudgetHandler) DeleteAnnualBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := parseYear(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	deleted, err := h.annualService.DeleteAnnualBudget(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if deleted {
		h.auditService.Log(userID, services.AuditDeleteBudget, models.OwnerAnnualBudget,
			fmt.Sprintf("%04d", year), c.ClientIP(), nil)
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// SyncAnnualBudget handles reconciling a year's budget against its transactions.
// @Summary     Sync annual budget
// @Description Recompute actual spending from the year's expense transactions
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       year path int true "Year"
// @Success     200 {object} models.AnnualBudget "Reconciled budget"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/annual/{year}/sync [post]
func (h *BudgetHandler) SyncAnnualBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := parseYear(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.annualService.SyncAnnualBudget(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditSyncBudget, models.OwnerAnnualBudget, budget.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// GetAnnualPerformance handles the budgeted-versus-actual view of a year.
// @Summary     Annual budget performance
// @Description Per-category budgeted, actual, variance and percent used for a year
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       year path int true "Year"
// @Success     200 {object} models.PerformanceData "Performance"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/annual/{year}/performance [get]
func (h *BudgetHandler) GetAnnualPerformance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := parseYear(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	perf, err := h.annualService.GetAnnualPerformance(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"performance": perf})
}
