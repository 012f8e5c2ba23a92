package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Type        models.TransactionType `json:"type" binding:"required,transaction_type"`
	Category    string                 `json:"category" binding:"required,max=100"`
	Subcategory string                 `json:"subcategory" binding:"max=100"`
	Amount      int64                  `json:"amount" binding:"required,gt=0"`
	Description string                 `json:"description" binding:"max=500"`
	Date        *string                `json:"date"`
}

// date resolves the optional booking date, defaulting to now in UTC.
func (r CreateTransactionRequest) date() (time.Time, error) {
	if r.Date == nil || *r.Date == "" {
		return time.Now().UTC(), nil
	}
	t, err := parseFlexibleTime(*r.Date)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return t, nil
}

// CreateTransaction records a transaction for the caller
// @Summary     Record a transaction
// @Description Record an income or expense under a category and optional subcategory. Expenses feed budget reconciliation.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}
	date, err := req.date()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(
		userID, req.Type, req.Category, req.Subcategory, req.Amount, req.Description, date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreateTransaction, "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{
			"type":        req.Type,
			"amount":      req.Amount,
			"category":    req.Category,
			"subcategory": req.Subcategory,
		})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// TransactionQuery is the query string accepted when listing transactions.
// Period narrows the listing to one calendar month, the same window a monthly
// budget reconciles against, and overrides from_date/to_date.
type TransactionQuery struct {
	pagination.PageRequest
	Period      string                 `form:"period"`
	FromDate    string                 `form:"from_date"`
	ToDate      string                 `form:"to_date"`
	Type        models.TransactionType `form:"type" binding:"omitempty,transaction_type"`
	Category    string                 `form:"category"`
	Subcategory string                 `form:"subcategory"`
	MinAmount   *int64                 `form:"min_amount" binding:"omitempty,gte=0"`
	MaxAmount   *int64                 `form:"max_amount" binding:"omitempty,gte=0"`
}

func (q TransactionQuery) filter() (services.TransactionFilter, error) {
	f := services.TransactionFilter{MinAmount: q.MinAmount, MaxAmount: q.MaxAmount}
	if q.Type != "" {
		f.Type = &q.Type
	}
	if q.Category != "" {
		f.Category = &q.Category
	}
	if q.Subcategory != "" {
		f.Subcategory = &q.Subcategory
	}

	if q.Period != "" {
		month, err := time.Parse("2006-01", q.Period)
		if err != nil {
			return f, apperrors.WithMessage(apperrors.ErrInvalidPeriod, "period must be YYYY-MM")
		}
		start, end := (&models.MonthlyBudget{Year: month.Year(), Month: int(month.Month())}).Period()
		f.FromDate, f.ToDate = &start, &end
		return f, nil
	}

	for _, bound := range []struct {
		name string
		raw  string
		dst  **time.Time
	}{
		{"from_date", q.FromDate, &f.FromDate},
		{"to_date", q.ToDate, &f.ToDate},
	} {
		if bound.raw == "" {
			continue
		}
		t, err := parseFlexibleTime(bound.raw)
		if err != nil {
			return f, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+bound.name+", use RFC3339 or YYYY-MM-DD")
		}
		*bound.dst = &t
	}
	return f, nil
}

// GetUserTransactions lists the caller's transactions
// @Summary     List transactions
// @Description Paginated transactions of the authenticated user, newest first, with optional filters
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Param       period      query string false "Calendar month YYYY-MM; overrides from_date/to_date"
// @Param       from_date   query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date     query string false "End date (RFC3339 or YYYY-MM-DD)"
// @Param       type        query string false "income or expense"
// @Param       category    query string false "Category name"
// @Param       subcategory query string false "Subcategory name"
// @Param       min_amount  query int    false "Minimum amount in cents"
// @Param       max_amount  query int    false "Maximum amount in cents"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid query"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query TransactionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindingError(err))
		return
	}
	filter, err := query.filter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransactionByID returns one of the caller's transactions
// @Summary     Get transaction
// @Description Fetch a transaction owned by the authenticated user
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction soft-deletes one of the caller's transactions
// @Summary     Delete transaction
// @Description Remove a transaction. Budgets keep their stored actuals until the next sync.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID := c.Param("id")
	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteTransaction, "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}
