package services

import (
	"testing"
	"time"

	"fintrack/internal/events"
	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestGetYearlyPlan_Absent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewYearlyPlanService(db, nil)

	plan, err := svc.GetYearlyPlan("nobody", 2024)
	testutil.AssertNoError(t, err)
	if plan != nil {
		t.Errorf("expected nil, got %+v", plan)
	}

	_, err = svc.GetYearlyPlan("nobody", 3000)
	testutil.AssertAppError(t, err, "INVALID_PERIOD")
}

func TestUpdateMonthlySummary(t *testing.T) {
	t.Run("creates_plan_and_orders_months", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pub := &recordingPublisher{}
		svc := NewYearlyPlanService(db, pub)
		user := testutil.CreateTestUser(t, db)

		june := testutil.CreateTestMonthlyBudget(t, db, user.ID, 2024, 6, 5000, testutil.LineItem("Food", "", 1000))
		feb := testutil.CreateTestMonthlyBudget(t, db, user.ID, 2024, 2, 4000, testutil.LineItem("Food", "", 800))

		_, err := svc.UpdateMonthlySummary(user.ID, 2024, 6, june)
		testutil.AssertNoError(t, err)
		plan, err := svc.UpdateMonthlySummary(user.ID, 2024, 2, feb)
		testutil.AssertNoError(t, err)

		if len(plan.MonthlySummaries) != 2 || plan.MonthlySummaries[0].Month != 2 || plan.MonthlySummaries[1].Month != 6 {
			t.Fatalf("expected months [2 6], got %+v", plan.MonthlySummaries)
		}
		if plan.Overview.TotalIncome != 9000 || plan.Overview.TotalBudgeted != 1800 || plan.Overview.MonthsTracked != 2 {
			t.Errorf("unexpected overview %+v", plan.Overview)
		}
		if pub.count(events.PlanUpdated, events.KindPlan) != 2 {
			t.Errorf("expected two plan.updated events, got %v", pub.types())
		}

		stored, err := svc.GetYearlyPlan(user.ID, 2024)
		testutil.AssertNoError(t, err)
		if stored.ID != plan.ID || len(stored.MonthlySummaries) != 2 {
			t.Errorf("expected plan to be persisted, got %+v", stored)
		}
	})

	t.Run("replaces_existing_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewYearlyPlanService(db, nil)
		user := testutil.CreateTestUser(t, db)

		budget := testutil.CreateTestMonthlyBudget(t, db, user.ID, 2024, 3, 5000, testutil.LineItem("Food", "", 1000))
		_, err := svc.UpdateMonthlySummary(user.ID, 2024, 3, budget)
		testutil.AssertNoError(t, err)

		budget.Income.Monthly = 6000
		budget.Items[0].MonthlyActual = 1200
		budget.RecomputeTotals()
		plan, err := svc.UpdateMonthlySummary(user.ID, 2024, 3, budget)
		testutil.AssertNoError(t, err)

		if len(plan.MonthlySummaries) != 1 {
			t.Fatalf("expected one summary, got %d", len(plan.MonthlySummaries))
		}
		s := plan.MonthlySummaries[0]
		if s.Income != 6000 || s.ActualExpenses != 1200 || s.Savings != 4800 || s.Variance != -200 {
			t.Errorf("unexpected summary %+v", s)
		}
	})

	t.Run("nil_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewYearlyPlanService(db, nil)

		_, err := svc.UpdateMonthlySummary("u", 2024, 3, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewYearlyPlanService(db, nil)

		_, err := svc.UpdateMonthlySummary("u", 2024, 0, &models.MonthlyBudget{})
		testutil.AssertAppError(t, err, "INVALID_PERIOD")
	})
}

func TestRemoveMonthlySummary(t *testing.T) {
	t.Run("drops_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewYearlyPlanService(db, nil)
		user := testutil.CreateTestUser(t, db)

		for _, month := range []int{1, 2} {
			b := testutil.CreateTestMonthlyBudget(t, db, user.ID, 2024, month, 5000, testutil.LineItem("Food", "", 100))
			_, err := svc.UpdateMonthlySummary(user.ID, 2024, month, b)
			testutil.AssertNoError(t, err)
		}

		plan, err := svc.RemoveMonthlySummary(user.ID, 2024, 1)
		testutil.AssertNoError(t, err)
		if len(plan.MonthlySummaries) != 1 || plan.MonthlySummaries[0].Month != 2 {
			t.Errorf("expected only February, got %+v", plan.MonthlySummaries)
		}
		if plan.Overview.TotalIncome != 5000 {
			t.Errorf("expected overview income 5000, got %d", plan.Overview.TotalIncome)
		}
	})

	t.Run("no_plan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewYearlyPlanService(db, nil)

		plan, err := svc.RemoveMonthlySummary("nobody", 2024, 1)
		testutil.AssertNoError(t, err)
		if plan != nil {
			t.Errorf("expected nil plan, got %+v", plan)
		}

		var count int64
		db.Model(&models.YearlyPlan{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no plan to be created, got %d", count)
		}
	})
}

func TestGenerateCategoryTrends(t *testing.T) {
	t.Run("groups_by_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewYearlyPlanService(db, nil).(*yearlyPlanService)
		generated := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return generated }
		user := testutil.CreateTestUser(t, db)

		for month, food := range map[int]int64{1: 100, 2: 100, 3: 200, 4: 200} {
			testutil.CreateTestMonthlyBudget(t, db, user.ID, 2024, month, 5000,
				testutil.LineItem("Food", "Groceries", food),
				testutil.LineItem("Food", "Dining Out", 50),
				testutil.LineItem("Housing", "Rent/Mortgage", 1500),
			)
		}

		plan, err := svc.GenerateCategoryTrends(user.ID, 2024)
		testutil.AssertNoError(t, err)

		if len(plan.CategoryTrends) != 2 {
			t.Fatalf("expected 2 category trends, got %+v", plan.CategoryTrends)
		}
		food, housing := plan.CategoryTrends[0], plan.CategoryTrends[1]
		if food.Category != "Food" || housing.Category != "Housing" {
			t.Fatalf("expected first-appearance order, got %s, %s", food.Category, housing.Category)
		}
		if len(food.Months) != 4 || food.Months[0].Month != 1 || food.Months[0].Budgeted != 150 || food.Months[3].Budgeted != 250 {
			t.Errorf("unexpected food months %+v", food.Months)
		}
		if food.Trend != models.TrendVolatile {
			t.Errorf("expected food to be volatile, got %s", food.Trend)
		}
		if housing.Trend != models.TrendStable {
			t.Errorf("expected housing to be stable, got %s", housing.Trend)
		}
		if plan.TrendsGeneratedAt == nil || !plan.TrendsGeneratedAt.Equal(generated) {
			t.Errorf("expected generation time %v, got %v", generated, plan.TrendsGeneratedAt)
		}
	})

	t.Run("no_budgets_no_plan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewYearlyPlanService(db, nil)

		plan, err := svc.GenerateCategoryTrends("nobody", 2024)
		testutil.AssertNoError(t, err)
		if plan != nil {
			t.Errorf("expected nil plan, got %+v", plan)
		}
	})

	t.Run("clears_trends_when_budgets_removed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewYearlyPlanService(db, nil)
		user := testutil.CreateTestUser(t, db)

		budget := testutil.CreateTestMonthlyBudget(t, db, user.ID, 2024, 1, 5000, testutil.LineItem("Food", "", 100))
		_, err := svc.UpdateMonthlySummary(user.ID, 2024, 1, budget)
		testutil.AssertNoError(t, err)
		_, err = svc.GenerateCategoryTrends(user.ID, 2024)
		testutil.AssertNoError(t, err)

		db.Where("owner_id = ?", budget.ID).Delete(&models.BudgetLineItem{})
		db.Delete(budget)

		plan, err := svc.GenerateCategoryTrends(user.ID, 2024)
		testutil.AssertNoError(t, err)
		if plan == nil || len(plan.CategoryTrends) != 0 {
			t.Errorf("expected an existing plan with no trends, got %+v", plan)
		}
	})
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name   string
		series []int64
		want   models.Trend
	}{
		{"empty", nil, models.TrendStable},
		{"two values", []int64{100, 500}, models.TrendStable},
		{"flat", []int64{100, 100, 100, 100}, models.TrendStable},
		{"small drift", []int64{100, 100, 105, 105}, models.TrendStable},
		{"moderate rise", []int64{100, 100, 115, 115}, models.TrendIncreasing},
		{"moderate fall", []int64{100, 100, 85, 85}, models.TrendDecreasing},
		{"large jump", []int64{100, 100, 200, 200}, models.TrendVolatile},
		{"large drop", []int64{200, 200, 100, 100}, models.TrendVolatile},
		{"odd length uses floor half", []int64{100, 100, 100}, models.TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTrend(tt.series); got != tt.want {
				t.Errorf("ClassifyTrend(%v) = %s, want %s", tt.series, got, tt.want)
			}
		})
	}
}
