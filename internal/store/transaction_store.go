package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/query"
)

type transactionStore struct {
	db *gorm.DB
}

// NewTransactionStore creates a GORM-backed TransactionStore.
func NewTransactionStore(db *gorm.DB) TransactionStore {
	return &transactionStore{db: db}
}

func (s *transactionStore) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.WithContext(ctx).Preload("Category").First(&tx, id).Error; err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

func (s *transactionStore) List(ctx context.Context, f TransactionFilter, sort query.TransactionSort, page pagination.PageRequest) ([]models.Transaction, int64, error) {
	page.Defaults()

	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []models.Transaction
	err := s.filtered(ctx, f).
		Scopes(orderTransactions(sort), pagination.Paginate(page)).
		Preload("Category").
		Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func (s *transactionStore) ListWithCategory(ctx context.Context, f TransactionFilter, sort query.TransactionSort) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.filtered(ctx, f).
		Scopes(orderTransactions(sort)).
		Preload("Category").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *transactionStore) Create(ctx context.Context, t *models.Transaction) error {
	db := s.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(t).Error; err != nil {
		return err
	}
	return s.loadCategory(db, t)
}

func (s *transactionStore) Update(ctx context.Context, t *models.Transaction) error {
	db := s.db.WithContext(ctx)
	res := db.Model(&models.Transaction{ID: t.ID}).
		Select("category_id", "amount", "comment").
		Updates(map[string]any{
			"category_id": t.CategoryID,
			"amount":      t.Amount,
			"comment":     t.Comment,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return s.loadCategory(db, t)
}

func (s *transactionStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Transaction{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// loadCategory refreshes t.Category to match t.CategoryID.
func (s *transactionStore) loadCategory(db *gorm.DB, t *models.Transaction) error {
	t.Category = nil
	if t.CategoryID == nil {
		return nil
	}
	var category models.Category
	err := db.First(&category, *t.CategoryID).Error
	if err == nil {
		t.Category = &category
		return nil
	}
	if translate(err) == ErrNotFound {
		return nil
	}
	return err
}

// filtered starts a fresh transactions query joined with categories so that
// ordering by category name is possible. Columns are table-qualified because
// both tables carry id and user_id.
func (s *transactionStore) filtered(ctx context.Context, f TransactionFilter) *gorm.DB {
	q := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Joins("LEFT JOIN categories ON categories.id = transactions.category_id")

	if f.Owner != nil {
		q = q.Where("transactions.user_id = ?", *f.Owner)
	}
	if f.From != nil {
		q = q.Where("transactions.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("transactions.created_at <= ?", *f.To)
	}
	return q
}

// orderTransactions applies the requested ordering with transactions.id as the
// tie-break. Category ordering keeps uncategorized rows last in both directions.
func orderTransactions(sort query.TransactionSort) func(*gorm.DB) *gorm.DB {
	dir := "ASC"
	if sort.Descending {
		dir = "DESC"
	}
	return func(db *gorm.DB) *gorm.DB {
		db = db.Select("transactions.*")
		switch sort.Field {
		case query.TransactionSortCategory:
			db = db.Order("CASE WHEN categories.name IS NULL THEN 1 ELSE 0 END").
				Order(fmt.Sprintf("categories.name %s", dir))
		case query.TransactionSortAmount:
			db = db.Order(fmt.Sprintf("transactions.amount %s", dir))
		case query.TransactionSortDate:
			db = db.Order(fmt.Sprintf("transactions.created_at %s", dir))
		default:
			return db.Order(fmt.Sprintf("transactions.id %s", dir))
		}
		return db.Order("transactions.id ASC")
	}
}
