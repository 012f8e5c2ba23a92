package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/uuid"
)

// transactionService stores the income and expense records budgets reconcile against.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// owned scopes a query to one user's transactions.
func owned(userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// CreateTransaction records an income or expense. Category and subcategory are
// stored trimmed since reconciliation matches them exactly; a zero date means now.
func (s *transactionService) CreateTransaction(
	userID string,
	transactionType models.TransactionType,
	category string,
	subcategory string,
	amount int64,
	description string,
	date time.Time,
) (*models.Transaction, error) {
	switch transactionType {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
	default:
		return nil, apperrors.ErrInvalidTransactionType
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	tx := &models.Transaction{
		UserID:      userID,
		Type:        transactionType,
		Category:    strings.TrimSpace(category),
		Subcategory: strings.TrimSpace(subcategory),
		Amount:      amount,
		Description: strings.TrimSpace(description),
		Date:        date.UTC(),
	}
	if tx.Category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if date.IsZero() {
		tx.Date = time.Now().UTC()
	}

	if err := s.db.Create(tx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tx, nil
}

// GetUserTransactions lists the user's transactions newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	query := s.db.Model(&models.Transaction{}).Scopes(owned(userID), filter.scope)

	result, err := pagination.Find[models.Transaction](query, page, "date DESC", "id DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &result, nil
}

// scope applies every set filter field to q.
func (f TransactionFilter) scope(q *gorm.DB) *gorm.DB {
	conds := []struct {
		set   bool
		query string
		arg   func() interface{}
	}{
		{f.FromDate != nil, "date >= ?", func() interface{} { return f.FromDate.UTC() }},
		{f.ToDate != nil, "date <= ?", func() interface{} { return f.ToDate.UTC() }},
		{f.Type != nil, "type = ?", func() interface{} { return *f.Type }},
		{f.Category != nil, "category = ?", func() interface{} { return *f.Category }},
		{f.Subcategory != nil, "subcategory = ?", func() interface{} { return *f.Subcategory }},
		{f.MinAmount != nil, "amount >= ?", func() interface{} { return *f.MinAmount }},
		{f.MaxAmount != nil, "amount <= ?", func() interface{} { return *f.MaxAmount }},
	}
	for _, c := range conds {
		if c.set {
			q = q.Where(c.query, c.arg())
		}
	}
	return q
}

// transactionKey canonicalizes a caller-supplied ID. Malformed IDs cannot name
// a stored row, so they are reported as not found.
func transactionKey(transactionID string) (string, error) {
	id, err := uuid.Parse(transactionID)
	if err != nil {
		return "", apperrors.ErrTransactionNotFound
	}
	return id, nil
}

// GetTransactionByID returns a transaction only if userID owns it.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	id, err := transactionKey(transactionID)
	if err != nil {
		return nil, err
	}

	var tx models.Transaction
	err = s.db.Scopes(owned(userID)).Where("id = ?", id).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tx, nil
}

// DeleteTransaction soft-deletes one of the user's transactions. Stored budget
// actuals are left alone until the next sync.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	id, err := transactionKey(transactionID)
	if err != nil {
		return err
	}

	res := s.db.Scopes(owned(userID)).Where("id = ?", id).Delete(&models.Transaction{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	logger.Get().Debugw("transaction deleted", "user_id", userID, "transaction_id", id)
	return nil
}

// FindTransactionsInRange returns the user's transactions of the given type dated
// within [start, end], oldest first.
func (s *transactionService) FindTransactionsInRange(userID string, start, end time.Time, transactionType models.TransactionType) ([]models.Transaction, error) {
	return findTransactionsInRange(s.db, userID, start, end, transactionType)
}

func findTransactionsInRange(db *gorm.DB, userID string, start, end time.Time, transactionType models.TransactionType) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := db.Scopes(owned(userID)).
		Where("type = ? AND date >= ? AND date <= ?", transactionType, start.UTC(), end.UTC()).
		Order("date ASC").
		Order("id ASC").
		Find(&txs).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txs, nil
}
