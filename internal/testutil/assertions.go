package testutil

import (
	"errors"
	"testing"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// AssertAppError checks that err carries the AppError code expectedCode.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	var appErr *apperrors.AppError
	switch {
	case err == nil:
		t.Fatalf("expected %s, got nil", expectedCode)
	case !errors.As(err, &appErr):
		t.Fatalf("expected %s, got %T: %v", expectedCode, err, err)
	case appErr.Code != expectedCode:
		t.Errorf("expected %s, got %s (%s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertActuals checks a line item's reconciled monthly and annual actuals.
func AssertActuals(t *testing.T, item models.BudgetLineItem, monthly, annual int64) {
	t.Helper()

	if item.MonthlyActual != monthly || item.AnnualActual != annual {
		t.Errorf("%s/%s: expected actuals monthly=%d annual=%d, got monthly=%d annual=%d",
			item.Category, item.Subcategory, monthly, annual, item.MonthlyActual, item.AnnualActual)
	}
}

// AssertTotalsMatchItems checks that totals equal the sum of the line items.
func AssertTotalsMatchItems(t *testing.T, items []models.BudgetLineItem, totals models.BudgetTotals) {
	t.Helper()

	var want models.BudgetTotals
	for _, item := range items {
		want.MonthlyBudgeted += item.MonthlyBudget
		want.AnnualBudgeted += item.AnnualBudget
		want.MonthlyActual += item.MonthlyActual
		want.AnnualActual += item.AnnualActual
	}
	if want != totals {
		t.Errorf("totals %+v do not match line items %+v", totals, want)
	}
}
