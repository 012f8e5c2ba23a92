package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/services"
)

// PipelineHandler serves machine-to-machine endpoints guarded by an API key.
type PipelineHandler struct {
	monthlyService services.MonthlyBudgetServicer
}

// NewPipelineHandler creates a new PipelineHandler
func NewPipelineHandler(monthlyService services.MonthlyBudgetServicer) *PipelineHandler {
	return &PipelineHandler{monthlyService: monthlyService}
}

// SyncBudgetsRequest selects the month to reconcile for every user.
type SyncBudgetsRequest struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required"`
}

// SyncBudgets reconciles every user's budget for a month
// @Summary     Bulk sync monthly budgets
// @Description Reconcile every monthly budget of the given month against its transactions
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string             true "Pipeline API key"
// @Param       request   body   SyncBudgetsRequest true "Period to sync"
// @Success     200 {object} services.SyncReport "Sync report"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /pipeline/budgets/sync [post]
func (h *PipelineHandler) SyncBudgets(c *gin.Context) {
	var req SyncBudgetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	report, err := h.monthlyService.SyncAllMonthlyBudgets(req.Year, req.Month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	logger.Get().Infow("pipeline budget sync",
		"caller", middleware.Caller(c),
		"year", report.Year,
		"month", report.Month,
		"synced", report.Synced,
		"failed", report.Failed,
	)

	c.JSON(http.StatusOK, gin.H{"report": report})
}
