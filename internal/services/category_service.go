package services

import (
	"context"
	"errors"

	"spendwise/internal/access"
	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/query"
	"spendwise/internal/store"
)

// categoryService handles category-related business logic.
type categoryService struct {
	categories store.CategoryStore
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(categories store.CategoryStore) CategoryServicer {
	return &categoryService{categories: categories}
}

// ListForUser returns the principal's own categories plus the active global
// ones. includeInactive only reveals the principal's own inactive categories.
func (s *categoryService) ListForUser(ctx context.Context, p access.Principal, page pagination.PageRequest, sort query.CategorySort, includeInactive bool) (*pagination.PageResponse[models.Category], error) {
	filter := store.CategoryFilter{VisibleTo: &p.UserID, IncludeInactive: includeInactive}
	return s.list(ctx, filter, page, sort)
}

// ListForAdmin returns every category, optionally narrowed to one owner.
func (s *categoryService) ListForAdmin(ctx context.Context, page pagination.PageRequest, sort query.CategorySort, owner *string) (*pagination.PageResponse[models.Category], error) {
	return s.list(ctx, store.CategoryFilter{Owner: owner}, page, sort)
}

func (s *categoryService) list(ctx context.Context, filter store.CategoryFilter, page pagination.PageRequest, sort query.CategorySort) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	categories, total, err := s.categories.List(ctx, filter, sort, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, total)
	return &result, nil
}

// GetByID returns a category the principal owns, or any global one.
func (s *categoryService) GetByID(ctx context.Context, p access.Principal, id uint) (*models.Category, error) {
	return s.load(ctx, p, id, access.AllowGlobal)
}

// CreateForUser creates an active category owned by the principal.
func (s *categoryService) CreateForUser(ctx context.Context, p access.Principal, name string) (*models.Category, error) {
	return s.create(ctx, name, &p.UserID)
}

// CreateForAdmin creates an active category for owner. A nil owner creates a
// global category.
func (s *categoryService) CreateForAdmin(ctx context.Context, name string, owner *string) (*models.Category, error) {
	return s.create(ctx, name, owner)
}

func (s *categoryService) create(ctx context.Context, name string, owner *string) (*models.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:     name,
		UserID:   owner,
		IsActive: true,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// Update renames a category. Global categories can only be renamed by admins.
func (s *categoryService) Update(ctx context.Context, p access.Principal, id uint, name string) (*models.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	category, err := s.load(ctx, p, id, access.OwnerOnly)
	if err != nil {
		return nil, err
	}

	category.Name = name
	if err := s.save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ToggleActive flips is_active and returns the new state.
func (s *categoryService) ToggleActive(ctx context.Context, p access.Principal, id uint) (bool, error) {
	category, err := s.load(ctx, p, id, access.OwnerOnly)
	if err != nil {
		return false, err
	}

	category.IsActive = !category.IsActive
	if err := s.save(ctx, category); err != nil {
		return false, err
	}
	return category.IsActive, nil
}

// Delete removes a category. Transactions that referenced it keep existing
// with no category.
func (s *categoryService) Delete(ctx context.Context, p access.Principal, id uint) error {
	if _, err := s.load(ctx, p, id, access.OwnerOnly); err != nil {
		return err
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// load resolves a category and applies the access policy. Absent and
// inaccessible categories produce the same error.
func (s *categoryService) load(ctx context.Context, p access.Principal, id uint, scope access.Scope) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !access.CanAccessCategory(p, category, scope) {
		return nil, apperrors.ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) save(ctx context.Context, category *models.Category) error {
	if err := s.categories.Update(ctx, category); err != nil {
		// Deleted between load and save.
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
