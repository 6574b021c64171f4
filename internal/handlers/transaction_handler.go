package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/report"
	"spendwise/internal/services"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the payload for recording a transaction
type CreateTransactionRequest struct {
	CategoryID uint             `json:"category_id" binding:"required,min=1"`
	Amount     *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"-12.50"`
	Comment    string           `json:"comment" binding:"required,max=255"`
}

// UpdateTransactionRequest represents the payload for replacing a transaction's
// category, amount and comment. A null category_id makes it uncategorized.
type UpdateTransactionRequest struct {
	CategoryID *uint            `json:"category_id" binding:"omitempty,min=1"`
	Amount     *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"-12.50"`
	Comment    string           `json:"comment" binding:"required,max=255"`
}

// AdminCreateTransactionRequest represents the payload for an admin-recorded transaction
type AdminCreateTransactionRequest struct {
	UserID     string           `json:"user_id" binding:"required,uuid"`
	CategoryID *uint            `json:"category_id" binding:"omitempty,min=1"`
	Amount     *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"-12.50"`
	Comment    string           `json:"comment" binding:"required,max=255"`
}

// ReportQuery holds the query parameters of a report request
type ReportQuery struct {
	Grouping     string `form:"grouping" binding:"required,grouping"`
	StartDate    string `form:"start_date"`
	EndDate      string `form:"end_date"`
	SortBy       string `form:"sort_by" binding:"omitempty,transaction_sort"`
	IsDescending bool   `form:"is_descending"`
	UserID       string `form:"user_id" binding:"omitempty,uuid"`
}

// TransactionListResponse represents a page of transactions
type TransactionListResponse = pagination.PageResponse[models.TransactionView]

// ReportResponse represents a grouped report
type ReportResponse struct {
	Grouping report.GroupingKey `json:"grouping"`
	Groups   []report.Group     `json:"groups"`
}

// ListTransactions lists the caller's transactions.
// @Summary     List transactions
// @Description List the authenticated user's transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number (default 1)"
// @Param       page_size query int false "Page size (default 20, max 100)"
// @Param       sort_by query string false "Sort field: id, category, amount or date"
// @Param       is_descending query bool false "Sort descending"
// @Success     200 {object} TransactionListResponse "Page of transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	p, err := currentPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	sort, err := transactionSort(page.SortBy, page.IsDescending)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListForUser(c.Request.Context(), p, page, sort)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(*result, (*models.Transaction).View))
}

// CreateTransaction records a transaction for the caller.
// @Summary     Create a transaction
// @Description Record a transaction in an active category that is global or owned by the caller
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.TransactionView "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     422 {object} ErrorResponse "Category not usable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	p, err := currentPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := h.transactionService.CreateForUser(c.Request.Context(), p, req.CategoryID, *req.Amount, req.Comment)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, p.UserID, actionCreate, tx.ID, map[string]any{
		"category_id": tx.CategoryID,
		"amount":      tx.Amount.String(),
	})

	c.JSON(http.StatusCreated, gin.H{"transaction": tx.View()})
}

// GetTransaction returns one transaction.
// @Summary     Get transaction by ID
// @Description Get a transaction owned by the caller
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.TransactionView "Transaction"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}

	tx, err := h.transactionService.GetByID(c.Request.Context(), p, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx.View()})
}

// UpdateTransaction replaces a transaction's category, amount and comment.
// @Summary     Update a transaction
// @Description Replace category, amount and comment. created_at never changes.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "New values"
// @Success     200 {object} models.TransactionView "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     422 {object} ErrorResponse "Category not usable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := h.transactionService.Update(c.Request.Context(), p, id, req.CategoryID, *req.Amount, req.Comment)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, p.UserID, actionUpdate, id, map[string]any{
		"category_id": tx.CategoryID,
		"amount":      tx.Amount.String(),
	})

	c.JSON(http.StatusOK, gin.H{"transaction": tx.View()})
}

// DeleteTransaction deletes a transaction.
// @Summary     Delete a transaction
// @Description Delete a transaction owned by the caller
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}

	if err := h.transactionService.Delete(c.Request.Context(), p, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, p.UserID, actionDelete, id, nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}

// Report groups the caller's transactions.
// @Summary     Transaction report
// @Description Group the caller's transactions by category, by month, or by both
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       grouping query string true "category, date or category_and_date"
// @Param       start_date query string false "Inclusive lower bound (YYYY-MM-DD or RFC 3339)"
// @Param       end_date query string false "Inclusive upper bound; a bare date covers the whole day"
// @Param       sort_by query string false "Sort field: id, category, amount or date"
// @Param       is_descending query bool false "Sort descending"
// @Success     200 {object} ReportResponse "Grouped transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/report [get]
func (h *TransactionHandler) Report(c *gin.Context) {
	p, err := currentPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	req, err := bindReport(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groups, err := h.transactionService.Report(c.Request.Context(), p, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReportResponse{Grouping: req.Grouping, Groups: groups})
}

// AdminListTransactions lists every transaction.
// @Summary     List all transactions (admin)
// @Description List every transaction, optionally for one owner
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number (default 1)"
// @Param       page_size query int false "Page size (default 20, max 100)"
// @Param       sort_by query string false "Sort field: id, category, amount or date"
// @Param       is_descending query bool false "Sort descending"
// @Param       user_id query string false "Only transactions owned by this user"
// @Success     200 {object} TransactionListResponse "Page of transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not an admin"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/transactions [get]
func (h *TransactionHandler) AdminListTransactions(c *gin.Context) {
	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	sort, err := transactionSort(page.SortBy, page.IsDescending)
	if err != nil {
		respondWithError(c, err)
		return
	}
	owner, err := optionalOwner(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListForAdmin(c.Request.Context(), page, sort, owner)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(*result, (*models.Transaction).View))
}

// AdminCreateTransaction records a transaction for any owner.
// @Summary     Create a transaction (admin)
// @Description Record a transaction for user_id. The category only has to exist.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AdminCreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.TransactionView "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not an admin"
// @Failure     422 {object} ErrorResponse "Category does not exist"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/transactions [post]
func (h *TransactionHandler) AdminCreateTransaction(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AdminCreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := h.transactionService.CreateForAdmin(c.Request.Context(), req.UserID, req.CategoryID, *req.Amount, req.Comment)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, actorID, actionCreate, tx.ID, map[string]any{
		"user_id":     tx.UserID,
		"category_id": tx.CategoryID,
		"amount":      tx.Amount.String(),
	})

	c.JSON(http.StatusCreated, gin.H{"transaction": tx.View()})
}

// AdminReport groups every transaction.
// @Summary     Transaction report (admin)
// @Description Group every transaction, optionally for one owner
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       grouping query string true "category, date or category_and_date"
// @Param       start_date query string false "Inclusive lower bound (YYYY-MM-DD or RFC 3339)"
// @Param       end_date query string false "Inclusive upper bound; a bare date covers the whole day"
// @Param       sort_by query string false "Sort field: id, category, amount or date"
// @Param       is_descending query bool false "Sort descending"
// @Param       user_id query string false "Only transactions owned by this user"
// @Success     200 {object} ReportResponse "Grouped transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not an admin"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/transactions/report [get]
func (h *TransactionHandler) AdminReport(c *gin.Context) {
	req, err := bindReport(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groups, err := h.transactionService.ReportForAdmin(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReportResponse{Grouping: req.Grouping, Groups: groups})
}

// bindReport validates the report query string. The user_id filter is carried
// through; the user path overrides it with the caller.
func bindReport(c *gin.Context) (services.ReportRequest, error) {
	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return services.ReportRequest{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	grouping, err := report.ParseGroupingKey(q.Grouping)
	if err != nil {
		return services.ReportRequest{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	sort, err := transactionSort(q.SortBy, q.IsDescending)
	if err != nil {
		return services.ReportRequest{}, err
	}
	start, err := parseDateParam("start_date", q.StartDate, false)
	if err != nil {
		return services.ReportRequest{}, err
	}
	end, err := parseDateParam("end_date", q.EndDate, true)
	if err != nil {
		return services.ReportRequest{}, err
	}

	req := services.ReportRequest{
		StartDate: start,
		EndDate:   end,
		Grouping:  grouping,
		Sort:      sort,
	}
	if q.UserID != "" {
		req.Owner = &q.UserID
	}
	return req, nil
}

func (h *TransactionHandler) audit(c *gin.Context, actorID, action string, id uint, changes map[string]any) {
	h.auditService.Log(c.Request.Context(), actorID, action, resourceTransaction,
		strconv.FormatUint(uint64(id), 10), c.ClientIP(), changes)
}
