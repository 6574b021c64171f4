package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/access"
	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/query"
	"spendwise/internal/report"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
	StoreRefreshTokenHash(ctx context.Context, userID, tokenHash string) error
	GetRefreshTokenHash(ctx context.Context, userID string) (string, error)
	RotateRefreshTokenHash(ctx context.Context, userID, currentHash, nextHash string) error
	SetBanned(ctx context.Context, userID string, banned bool) (*models.User, error)
}

// CategoryServicer defines the contract for category-related business logic.
// Every id-taking method returns ErrCategoryNotFound both for a missing
// category and for one the principal may not touch.
type CategoryServicer interface {
	ListForUser(ctx context.Context, p access.Principal, page pagination.PageRequest, sort query.CategorySort, includeInactive bool) (*pagination.PageResponse[models.Category], error)
	ListForAdmin(ctx context.Context, page pagination.PageRequest, sort query.CategorySort, owner *string) (*pagination.PageResponse[models.Category], error)
	GetByID(ctx context.Context, p access.Principal, id uint) (*models.Category, error)
	CreateForUser(ctx context.Context, p access.Principal, name string) (*models.Category, error)
	CreateForAdmin(ctx context.Context, name string, owner *string) (*models.Category, error)
	Update(ctx context.Context, p access.Principal, id uint, name string) (*models.Category, error)
	ToggleActive(ctx context.Context, p access.Principal, id uint) (bool, error)
	Delete(ctx context.Context, p access.Principal, id uint) error
}

// ReportRequest selects the transactions of a grouped report and how to group them.
type ReportRequest struct {
	// StartDate and EndDate bound created_at inclusively.
	StartDate *time.Time
	EndDate   *time.Time
	Grouping  report.GroupingKey
	Sort      query.TransactionSort
	// Owner narrows the admin report to one user. The user report always
	// scopes to the principal and ignores it.
	Owner *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateForUser(ctx context.Context, p access.Principal, categoryID uint, amount decimal.Decimal, comment string) (*models.Transaction, error)
	CreateForAdmin(ctx context.Context, owner string, categoryID *uint, amount decimal.Decimal, comment string) (*models.Transaction, error)
	ListForUser(ctx context.Context, p access.Principal, page pagination.PageRequest, sort query.TransactionSort) (*pagination.PageResponse[models.Transaction], error)
	ListForAdmin(ctx context.Context, page pagination.PageRequest, sort query.TransactionSort, owner *string) (*pagination.PageResponse[models.Transaction], error)
	GetByID(ctx context.Context, p access.Principal, id uint) (*models.Transaction, error)
	Update(ctx context.Context, p access.Principal, id uint, categoryID *uint, amount decimal.Decimal, comment string) (*models.Transaction, error)
	Delete(ctx context.Context, p access.Principal, id uint) error
	Report(ctx context.Context, p access.Principal, req ReportRequest) ([]report.Group, error)
	ReportForAdmin(ctx context.Context, req ReportRequest) ([]report.Group, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, actorID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
