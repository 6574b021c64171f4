package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/query"
)

type categoryStore struct {
	db *gorm.DB
}

// NewCategoryStore creates a GORM-backed CategoryStore.
func NewCategoryStore(db *gorm.DB) CategoryStore {
	return &categoryStore{db: db}
}

func (s *categoryStore) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (s *categoryStore) List(ctx context.Context, f CategoryFilter, sort query.CategorySort, page pagination.PageRequest) ([]models.Category, int64, error) {
	page.Defaults()

	base := func() *gorm.DB {
		return applyCategoryFilter(s.db.WithContext(ctx).Model(&models.Category{}), f)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var categories []models.Category
	err := base().
		Scopes(orderCategories(sort), pagination.Paginate(page)).
		Find(&categories).Error
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

func (s *categoryStore) Create(ctx context.Context, c *models.Category) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *categoryStore) Update(ctx context.Context, c *models.Category) error {
	res := s.db.WithContext(ctx).Model(c).
		Select("name", "user_id", "is_active").
		Updates(map[string]any{"name": c.Name, "user_id": c.UserID, "is_active": c.IsActive})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *categoryStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func applyCategoryFilter(q *gorm.DB, f CategoryFilter) *gorm.DB {
	if f.VisibleTo != nil {
		if f.IncludeInactive {
			q = q.Where("(user_id = ? OR (user_id IS NULL AND is_active = ?))", *f.VisibleTo, true)
		} else {
			q = q.Where("((user_id = ? AND is_active = ?) OR (user_id IS NULL AND is_active = ?))", *f.VisibleTo, true, true)
		}
	}
	if f.Owner != nil {
		q = q.Where("user_id = ?", *f.Owner)
	}
	return q
}

// orderCategories applies the requested ordering with id as the tie-break.
func orderCategories(sort query.CategorySort) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if sort.Field == query.CategorySortName {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: "name"}, Desc: sort.Descending})
			return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
		}
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: sort.Descending})
	}
}
