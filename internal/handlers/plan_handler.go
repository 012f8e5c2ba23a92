package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/services"
)

// PlanHandler serves the yearly rollup of monthly budgets.
type PlanHandler struct {
	planService services.YearlyPlanServicer
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(planService services.YearlyPlanServicer) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// GetYearlyPlan handles retrieving a year's rollup
// @Summary     Get yearly plan
// @Description Get the yearly rollup of monthly summaries; plan is null until a monthly budget is saved
// @Tags        plans
// @Produce     json
// @Security    BearerAuth
// @Param       year path int true "Year"
// @Success     200 {object} models.YearlyPlan "Yearly plan or null"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /plans/{year} [get]
func (h *PlanHandler) GetYearlyPlan(c *gin.Context) {
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

	plan, err := h.planService.GetYearlyPlan(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// GenerateTrends handles recomputing the category trends of a year
// @Summary     Generate category trends
// @Description Rebuild per-category monthly series and their trend classification from the year's monthly budgets
// @Tags        plans
// @Produce     json
// @Security    BearerAuth
// @Param       year path int true "Year"
// @Success     200 {object} models.YearlyPlan "Yearly plan with trends, or null"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /plans/{year}/trends [post]
func (h *PlanHandler) GenerateTrends(c *gin.Context) {
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

	plan, err := h.planService.GenerateCategoryTrends(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}
