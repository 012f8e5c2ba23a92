package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTransaction creates an expense in the given category on date.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, category, subcategory string, amount int64, date time.Time) *models.Transaction {
	t.Helper()
	return CreateTestTransactionOfType(t, db, userID, models.TransactionTypeExpense, category, subcategory, amount, date)
}

// CreateTestTransactionOfType creates a transaction of the given type.
func CreateTestTransactionOfType(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, category, subcategory string, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		Type:        txType,
		Category:    category,
		Subcategory: subcategory,
		Amount:      amount,
		Description: fmt.Sprintf("Test transaction %d", nextID()),
		Date:        date.UTC(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// LineItem builds an unsaved monthly line item; annual budget is monthly×12.
func LineItem(category, subcategory string, monthly int64) models.BudgetLineItem {
	return models.BudgetLineItem{
		Category:      category,
		Subcategory:   subcategory,
		MonthlyBudget: monthly,
		AnnualBudget:  monthly * 12,
		Frequency:     models.FrequencyMonthly,
	}
}

// CreateTestMonthlyBudget persists a monthly budget with the given items.
func CreateTestMonthlyBudget(t *testing.T, db *gorm.DB, userID string, year, month int, income int64, items ...models.BudgetLineItem) *models.MonthlyBudget {
	t.Helper()

	for i := range items {
		items[i].Position = i
	}
	budget := &models.MonthlyBudget{
		UserID: userID,
		Year:   year,
		Month:  month,
		Income: models.BudgetIncome{Monthly: income, Annual: income * 12},
		Items:  items,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test monthly budget: %v", err)
	}
	return budget
}

// CreateTestAnnualBudget persists an annual budget with the given items.
func CreateTestAnnualBudget(t *testing.T, db *gorm.DB, userID string, year int, income int64, items ...models.BudgetLineItem) *models.AnnualBudget {
	t.Helper()

	for i := range items {
		items[i].Position = i
	}
	budget := &models.AnnualBudget{
		UserID: userID,
		Year:   year,
		Income: models.BudgetIncome{Monthly: income / 12, Annual: income},
		Items:  items,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test annual budget: %v", err)
	}
	return budget
}
