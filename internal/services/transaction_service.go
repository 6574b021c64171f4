package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/access"
	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/query"
	"spendwise/internal/report"
	"spendwise/internal/store"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	transactions store.TransactionStore
	categories   store.CategoryStore
	registry     *report.Registry
	now          func() time.Time
}

// NewTransactionService creates a new TransactionServicer stamping
// transactions with the wall clock.
func NewTransactionService(transactions store.TransactionStore, categories store.CategoryStore, registry *report.Registry) TransactionServicer {
	return NewTransactionServiceWithClock(transactions, categories, registry, time.Now)
}

// NewTransactionServiceWithClock creates a new TransactionServicer that reads
// creation timestamps from now.
func NewTransactionServiceWithClock(transactions store.TransactionStore, categories store.CategoryStore, registry *report.Registry, now func() time.Time) TransactionServicer {
	return &transactionService{
		transactions: transactions,
		categories:   categories,
		registry:     registry,
		now:          now,
	}
}

// CreateForUser records a transaction owned by the principal. The category
// must exist, be active and be either global or the principal's own.
func (s *transactionService) CreateForUser(ctx context.Context, p access.Principal, categoryID uint, amount decimal.Decimal, comment string) (*models.Transaction, error) {
	comment, err := normalizeTransaction(amount, comment)
	if err != nil {
		return nil, err
	}

	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrCategoryIneligible
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !access.CanUseCategoryForTransaction(p, category) {
		return nil, apperrors.ErrCategoryIneligible
	}

	return s.create(ctx, p.UserID, &category.ID, amount, comment)
}

// CreateForAdmin records a transaction for any owner. The category is only
// checked for existence.
func (s *transactionService) CreateForAdmin(ctx context.Context, owner string, categoryID *uint, amount decimal.Decimal, comment string) (*models.Transaction, error) {
	if owner == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "owner is required")
	}
	comment, err := normalizeTransaction(amount, comment)
	if err != nil {
		return nil, err
	}

	if categoryID != nil {
		if err := s.requireCategory(ctx, *categoryID); err != nil {
			return nil, err
		}
	}

	return s.create(ctx, owner, categoryID, amount, comment)
}

func (s *transactionService) create(ctx context.Context, owner string, categoryID *uint, amount decimal.Decimal, comment string) (*models.Transaction, error) {
	tx := &models.Transaction{
		CategoryID: categoryID,
		Amount:     amount,
		Comment:    comment,
		CreatedAt:  s.now().UTC(),
		UserID:     owner,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tx, nil
}

// ListForUser returns the principal's transactions.
func (s *transactionService) ListForUser(ctx context.Context, p access.Principal, page pagination.PageRequest, sort query.TransactionSort) (*pagination.PageResponse[models.Transaction], error) {
	return s.list(ctx, store.TransactionFilter{Owner: &p.UserID}, page, sort)
}

// ListForAdmin returns every transaction, optionally narrowed to one owner.
func (s *transactionService) ListForAdmin(ctx context.Context, page pagination.PageRequest, sort query.TransactionSort, owner *string) (*pagination.PageResponse[models.Transaction], error) {
	return s.list(ctx, store.TransactionFilter{Owner: owner}, page, sort)
}

func (s *transactionService) list(ctx context.Context, filter store.TransactionFilter, page pagination.PageRequest, sort query.TransactionSort) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	txs, total, err := s.transactions.List(ctx, filter, sort, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(txs, page.Page, page.PageSize, total)
	return &result, nil
}

// GetByID returns a transaction owned by the principal.
func (s *transactionService) GetByID(ctx context.Context, p access.Principal, id uint) (*models.Transaction, error) {
	return s.load(ctx, p, id)
}

// Update replaces category, amount and comment. created_at is kept. Moving a
// transaction to another category applies the same eligibility rule as
// creation, except that admins only need the category to exist.
func (s *transactionService) Update(ctx context.Context, p access.Principal, id uint, categoryID *uint, amount decimal.Decimal, comment string) (*models.Transaction, error) {
	comment, err := normalizeTransaction(amount, comment)
	if err != nil {
		return nil, err
	}

	tx, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if categoryID != nil && (tx.CategoryID == nil || *tx.CategoryID != *categoryID) {
		if err := s.checkCategoryChange(ctx, p, *categoryID); err != nil {
			return nil, err
		}
	}

	tx.CategoryID = categoryID
	tx.Amount = amount
	tx.Comment = comment
	if err := s.transactions.Update(ctx, tx); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tx, nil
}

// Delete removes a transaction owned by the principal.
func (s *transactionService) Delete(ctx context.Context, p access.Principal, id uint) error {
	if _, err := s.load(ctx, p, id); err != nil {
		return err
	}

	if err := s.transactions.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.ErrTransactionNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Report groups the principal's transactions.
func (s *transactionService) Report(ctx context.Context, p access.Principal, req ReportRequest) ([]report.Group, error) {
	req.Owner = &p.UserID
	return s.report(ctx, req)
}

// ReportForAdmin groups every transaction, optionally narrowed to req.Owner.
func (s *transactionService) ReportForAdmin(ctx context.Context, req ReportRequest) ([]report.Group, error) {
	return s.report(ctx, req)
}

// report filters and orders in the store, then hands the rows to the
// strategy registered for the requested grouping.
func (s *transactionService) report(ctx context.Context, req ReportRequest) ([]report.Group, error) {
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "end_date must not be before start_date")
	}

	strategy, err := s.registry.Strategy(req.Grouping)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	filter := store.TransactionFilter{
		Owner: req.Owner,
		From:  inUTC(req.StartDate),
		To:    inUTC(req.EndDate),
	}
	txs, err := s.transactions.ListWithCategory(ctx, filter, req.Sort)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return strategy.Group(txs), nil
}

// load resolves a transaction and applies the access policy. Absent and
// inaccessible transactions produce the same error.
func (s *transactionService) load(ctx context.Context, p access.Principal, id uint) (*models.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !access.CanAccessTransaction(p, tx) {
		return nil, apperrors.ErrTransactionNotFound
	}
	return tx, nil
}

func (s *transactionService) checkCategoryChange(ctx context.Context, p access.Principal, categoryID uint) error {
	if p.IsAdmin {
		return s.requireCategory(ctx, categoryID)
	}

	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.ErrCategoryIneligible
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !access.CanUseCategoryForTransaction(p, category) {
		return apperrors.ErrCategoryIneligible
	}
	return nil
}

func (s *transactionService) requireCategory(ctx context.Context, categoryID uint) error {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.ErrCategoryIneligible
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func normalizeTransaction(amount decimal.Decimal, comment string) (string, error) {
	if err := validateAmount(amount); err != nil {
		return "", err
	}
	return normalizeComment(comment)
}

func inUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
