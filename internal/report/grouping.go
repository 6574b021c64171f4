// Package report groups transactions into report buckets.
//
// Each grouping mode has its own Strategy. Strategies only group and shape:
// filtering and ordering happen in the store before they run, so groups come
// out in first-encounter order and members keep their input order.
package report

import (
	"strings"

	"spendwise/internal/models"
)

// NoCategory labels the bucket for transactions without a category.
const NoCategory = "No category"

// Key identifies one report bucket. Only the fields relevant to the grouping
// mode are set.
type Key struct {
	Category *string `json:"category,omitempty"`
	Year     *int    `json:"year,omitempty"`
	Month    *int    `json:"month,omitempty"`
}

// Group is one report bucket and the transactions that fell into it.
type Group struct {
	Key          Key                      `json:"key"`
	Transactions []models.TransactionView `json:"transactions"`
}

// Strategy groups an ordered set of transactions.
type Strategy interface {
	Group(txs []models.Transaction) []Group
}

// CategoryStrategy buckets by trimmed category name.
type CategoryStrategy struct{}

// Group implements Strategy.
func (CategoryStrategy) Group(txs []models.Transaction) []Group {
	return groupBy(txs, func(t *models.Transaction) (categoryMonth, Key) {
		name := categoryName(t)
		return categoryMonth{category: name}, Key{Category: &name}
	})
}

// DateStrategy buckets by the year and month of created_at, read in the
// timestamp's own location.
type DateStrategy struct{}

// Group implements Strategy.
func (DateStrategy) Group(txs []models.Transaction) []Group {
	return groupBy(txs, func(t *models.Transaction) (categoryMonth, Key) {
		year, month := t.CreatedAt.Year(), int(t.CreatedAt.Month())
		return categoryMonth{year: year, month: month}, Key{Year: &year, Month: &month}
	})
}

// CategoryDateStrategy buckets by category name, year and month together.
type CategoryDateStrategy struct{}

// Group implements Strategy.
func (CategoryDateStrategy) Group(txs []models.Transaction) []Group {
	return groupBy(txs, func(t *models.Transaction) (categoryMonth, Key) {
		name := categoryName(t)
		year, month := t.CreatedAt.Year(), int(t.CreatedAt.Month())
		return categoryMonth{category: name, year: year, month: month},
			Key{Category: &name, Year: &year, Month: &month}
	})
}

// categoryMonth is the comparable form of a Key used for bucketing.
type categoryMonth struct {
	category string
	year     int
	month    int
}

func groupBy(txs []models.Transaction, keyOf func(*models.Transaction) (categoryMonth, Key)) []Group {
	groups := []Group{}
	index := make(map[categoryMonth]int)

	for i := range txs {
		bucket, key := keyOf(&txs[i])
		pos, ok := index[bucket]
		if !ok {
			pos = len(groups)
			index[bucket] = pos
			groups = append(groups, Group{Key: key})
		}
		groups[pos].Transactions = append(groups[pos].Transactions, txs[i].View())
	}
	return groups
}

func categoryName(t *models.Transaction) string {
	if t.Category == nil {
		return NoCategory
	}
	return strings.TrimSpace(t.Category.Name)
}
