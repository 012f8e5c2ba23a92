package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

type mockYearlyPlanService struct {
	getFn    func(userID string, year int) (*models.YearlyPlan, error)
	trendsFn func(userID string, year int) (*models.YearlyPlan, error)
}

func (m *mockYearlyPlanService) GetYearlyPlan(userID string, year int) (*models.YearlyPlan, error) {
	if m.getFn != nil {
		return m.getFn(userID, year)
	}
	return nil, nil
}

func (m *mockYearlyPlanService) UpdateMonthlySummary(string, int, int, *models.MonthlyBudget) (*models.YearlyPlan, error) {
	return nil, nil
}

func (m *mockYearlyPlanService) RemoveMonthlySummary(string, int, int) (*models.YearlyPlan, error) {
	return nil, nil
}

func (m *mockYearlyPlanService) GenerateCategoryTrends(userID string, year int) (*models.YearlyPlan, error) {
	if m.trendsFn != nil {
		return m.trendsFn(userID, year)
	}
	return nil, nil
}

func setupPlanRouter(svc services.YearlyPlanServicer) *gin.Engine {
	h := NewPlanHandler(svc)
	r := gin.New()
	g := r.Group("/", injectUserID(testUserID))
	g.GET("/plans/:year", h.GetYearlyPlan)
	g.POST("/plans/:year/trends", h.GenerateTrends)
	return r
}

func TestPlanHandler_GetYearlyPlan(t *testing.T) {
	t.Run("returns the plan", func(t *testing.T) {
		svc := &mockYearlyPlanService{
			getFn: func(userID string, year int) (*models.YearlyPlan, error) {
				return &models.YearlyPlan{
					UserID:           userID,
					Year:             year,
					MonthlySummaries: []models.MonthlySummary{{Month: 1, Income: 500000}},
				}, nil
			},
		}
		r := setupPlanRouter(svc)

		rec := doRequest(r, "GET", "/plans/2024", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		plan := parseJSON(t, rec)["plan"].(map[string]interface{})
		if plan["year"] != float64(2024) {
			t.Errorf("expected year 2024, got %v", plan["year"])
		}
	})

	t.Run("returns null when absent", func(t *testing.T) {
		r := setupPlanRouter(&mockYearlyPlanService{})

		rec := doRequest(r, "GET", "/plans/2024", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if v, ok := parseJSON(t, rec)["plan"]; !ok || v != nil {
			t.Errorf("expected null plan, got %v", v)
		}
	})

	t.Run("returns INVALID_PERIOD on a bad year", func(t *testing.T) {
		r := setupPlanRouter(&mockYearlyPlanService{})

		rec := doRequest(r, "GET", "/plans/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_PERIOD")
	})
}

func TestPlanHandler_GenerateTrends(t *testing.T) {
	called := false
	svc := &mockYearlyPlanService{
		trendsFn: func(_ string, year int) (*models.YearlyPlan, error) {
			called = true
			return &models.YearlyPlan{
				Year:           year,
				CategoryTrends: []models.CategoryTrend{
					{Category: "Food", Trend: models.TrendStable},
				},
			}, nil
		},
	}
	r := setupPlanRouter(svc)

	rec := doRequest(r, "POST", "/plans/2024/trends", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !called {
		t.Fatal("expected GenerateCategoryTrends to be called")
	}
	plan := parseJSON(t, rec)["plan"].(map[string]interface{})
	trends := plan["category_trends"].([]interface{})
	if len(trends) != 1 {
		t.Errorf("expected 1 trend, got %d", len(trends))
	}
}

func TestPipelineHandler_SyncBudgets(t *testing.T) {
	setup := func(svc *mockMonthlyBudgetService) *gin.Engine {
		r := gin.New()
		g := r.Group("/pipeline", middleware.PipelineAuthMiddleware("pipeline-key"))
		g.POST("/budgets/sync", NewPipelineHandler(svc).SyncBudgets)
		return r
	}

	t.Run("returns the sync report", func(t *testing.T) {
		svc := &mockMonthlyBudgetService{
			syncAllFn: func(year, month int) (*services.SyncReport, error) {
				return &services.SyncReport{Year: year, Month: month, Synced: 3}, nil
			},
		}
		r := setup(svc)

		req := newRequestWithKey("POST", "/pipeline/budgets/sync", `{"year":2024,"month":3}`, "pipeline-key")
		rec := serve(r, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		report := parseJSON(t, rec)["report"].(map[string]interface{})
		if report["synced"] != float64(3) || report["month"] != float64(3) {
			t.Errorf("unexpected report %v", report)
		}
	})

	t.Run("rejects a missing month", func(t *testing.T) {
		r := setup(&mockMonthlyBudgetService{})

		rec := serve(r, newRequestWithKey("POST", "/pipeline/budgets/sync", `{"year":2024}`, "pipeline-key"))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("rejects a wrong key", func(t *testing.T) {
		r := setup(&mockMonthlyBudgetService{})

		rec := serve(r, newRequestWithKey("POST", "/pipeline/budgets/sync", `{"year":2024,"month":3}`, "nope"))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_API_KEY")
	})
}
