package services

import (
	"strings"

	"golang.org/x/text/cases"

	"fintrack/internal/models"
)

// Matcher picks the line item a transaction is reconciled against.
// Match returns the item index, or -1 when no item matches.
type Matcher interface {
	Match(items []models.BudgetLineItem, tx models.Transaction) int
}

// ExactMatcher matches on case-sensitive equality of (category, subcategory).
type ExactMatcher struct{}

// Match implements Matcher.
func (ExactMatcher) Match(items []models.BudgetLineItem, tx models.Transaction) int {
	for i := range items {
		if items[i].Category == tx.Category && items[i].Subcategory == tx.Subcategory {
			return i
		}
	}
	return -1
}

// LegacySubstringMatcher is the compatibility matcher for annual budgets. A
// transaction matches an item when, after case folding, its category contains
// the item's category or subcategory or is contained by either. Several items
// can satisfy that test; the first one in item order is used so a transaction
// is counted once.
type LegacySubstringMatcher struct{}

// Match implements Matcher. A Caser carries state, so one is built per call.
func (LegacySubstringMatcher) Match(items []models.BudgetLineItem, tx models.Transaction) int {
	fold := cases.Fold()
	category := fold.String(tx.Category)
	if category == "" {
		return -1
	}
	for i := range items {
		if foldContains(fold, category, items[i].Category) || foldContains(fold, category, items[i].Subcategory) {
			return i
		}
	}
	return -1
}

func foldContains(fold cases.Caser, category, text string) bool {
	text = fold.String(text)
	if text == "" {
		return false
	}
	return strings.Contains(text, category) || strings.Contains(category, text)
}

// reconcile resets every item's actuals and adds the absolute amount of each
// matched transaction to the item's annual and monthly actuals. Unmatched
// transactions are ignored. The result depends only on items and txs, so
// running it twice over the same transactions yields the same actuals.
func reconcile(items []models.BudgetLineItem, txs []models.Transaction, matcher Matcher) (matched int) {
	models.ResetActuals(items)
	for _, tx := range txs {
		i := matcher.Match(items, tx)
		if i < 0 {
			continue
		}
		amount := tx.Amount
		if amount < 0 {
			amount = -amount
		}
		items[i].MonthlyActual += amount
		items[i].AnnualActual += amount
		matched++
	}
	return matched
}
