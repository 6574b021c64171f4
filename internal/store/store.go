// Package store defines the persistence ports for categories and transactions
// and their GORM implementations.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/query"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("record not found")

// CategoryFilter narrows a category listing. The zero value matches everything.
type CategoryFilter struct {
	// VisibleTo restricts the listing to the user's own categories plus the
	// active global ones.
	VisibleTo *string
	// IncludeInactive also returns the VisibleTo user's inactive categories.
	// Inactive global categories stay hidden regardless.
	IncludeInactive bool
	// Owner matches user_id exactly.
	Owner *string
}

// TransactionFilter narrows a transaction listing. The zero value matches everything.
type TransactionFilter struct {
	Owner *string
	// From and To bound created_at inclusively.
	From *time.Time
	To   *time.Time
}

// CategoryStore persists categories.
type CategoryStore interface {
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	List(ctx context.Context, f CategoryFilter, sort query.CategorySort, page pagination.PageRequest) ([]models.Category, int64, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	// Delete removes the category. Every transaction that referenced it has
	// its category_id set to NULL in the same database transaction.
	Delete(ctx context.Context, id uint) error
}

// TransactionStore persists transactions. Every read preloads Category.
type TransactionStore interface {
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	List(ctx context.Context, f TransactionFilter, sort query.TransactionSort, page pagination.PageRequest) ([]models.Transaction, int64, error)
	// ListWithCategory returns every matching transaction, unpaged, joined with
	// its category and in the requested order. Reports group over this.
	ListWithCategory(ctx context.Context, f TransactionFilter, sort query.TransactionSort) ([]models.Transaction, error)
	Create(ctx context.Context, t *models.Transaction) error
	// Update writes category_id, amount and comment. created_at is never written.
	Update(ctx context.Context, t *models.Transaction) error
	Delete(ctx context.Context, id uint) error
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
