package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/models"
)

var (
	food = &models.Category{ID: 1, Name: "Food", IsActive: true}
	tech = &models.Category{ID: 2, Name: "Tech", IsActive: true}
)

func tx(id uint, category *models.Category, created string) models.Transaction {
	at, err := time.Parse("2006-01-02", created)
	if err != nil {
		panic(err)
	}
	t := models.Transaction{
		ID:        id,
		Amount:    decimal.NewFromInt(int64(id) * 10),
		Comment:   "tx",
		CreatedAt: at,
		UserID:    "alice",
		Category:  category,
	}
	if category != nil {
		t.CategoryID = &category.ID
	}
	return t
}

func ids(g Group) []uint {
	out := make([]uint, len(g.Transactions))
	for i, v := range g.Transactions {
		out[i] = v.ID
	}
	return out
}

func TestCategoryStrategy(t *testing.T) {
	txs := []models.Transaction{
		tx(1, food, "2023-01-10"),
		tx(2, food, "2023-01-10"),
		tx(3, tech, "2023-02-10"),
	}

	groups := CategoryStrategy{}.Group(txs)

	require.Len(t, groups, 2)
	assert.Equal(t, "Food", *groups[0].Key.Category)
	assert.Equal(t, []uint{1, 2}, ids(groups[0]))
	assert.Equal(t, "Tech", *groups[1].Key.Category)
	assert.Equal(t, []uint{3}, ids(groups[1]))
	assert.Nil(t, groups[0].Key.Year)
	assert.Nil(t, groups[0].Key.Month)
}

func TestCategoryStrategy_TrimsNames(t *testing.T) {
	padded := &models.Category{ID: 9, Name: "  Food ", IsActive: true}
	groups := CategoryStrategy{}.Group([]models.Transaction{
		tx(1, food, "2023-01-10"),
		tx(2, padded, "2023-01-11"),
	})

	require.Len(t, groups, 1)
	assert.Equal(t, []uint{1, 2}, ids(groups[0]))
}

func TestCategoryStrategy_NoCategorySentinel(t *testing.T) {
	groups := CategoryStrategy{}.Group([]models.Transaction{
		tx(1, nil, "2023-01-10"),
		tx(2, food, "2023-01-10"),
		tx(3, nil, "2023-03-01"),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, NoCategory, *groups[0].Key.Category)
	assert.Equal(t, []uint{1, 3}, ids(groups[0]))
	assert.Nil(t, groups[0].Transactions[0].CategoryName)
}

func TestDateStrategy(t *testing.T) {
	groups := DateStrategy{}.Group([]models.Transaction{
		tx(1, food, "2023-01-10"),
		tx(2, tech, "2023-01-10"),
		tx(3, food, "2023-02-10"),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, 2023, *groups[0].Key.Year)
	assert.Equal(t, 1, *groups[0].Key.Month)
	assert.Equal(t, []uint{1, 2}, ids(groups[0]))
	assert.Equal(t, 2023, *groups[1].Key.Year)
	assert.Equal(t, 2, *groups[1].Key.Month)
	assert.Equal(t, []uint{3}, ids(groups[1]))
	assert.Nil(t, groups[0].Key.Category)
}

func TestDateStrategy_UsesRecordedOffset(t *testing.T) {
	// 2023-01-31 23:30 at +02:00 is already February in UTC; the recorded
	// wall clock decides.
	zone := time.FixedZone("UTC+2", 2*60*60)
	late := models.Transaction{ID: 1, CreatedAt: time.Date(2023, 1, 31, 23, 30, 0, 0, zone)}
	utc := models.Transaction{ID: 2, CreatedAt: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)}

	groups := DateStrategy{}.Group([]models.Transaction{late, utc})

	require.Len(t, groups, 2)
	assert.Equal(t, 1, *groups[0].Key.Month)
	assert.Equal(t, 2, *groups[1].Key.Month)
}

func TestCategoryDateStrategy(t *testing.T) {
	groups := CategoryDateStrategy{}.Group([]models.Transaction{
		tx(1, food, "2023-01-05"),
		tx(2, food, "2023-01-20"),
		tx(3, food, "2023-02-03"),
		tx(4, tech, "2023-02-04"),
	})

	require.Len(t, groups, 3)

	assert.Equal(t, "Food", *groups[0].Key.Category)
	assert.Equal(t, 1, *groups[0].Key.Month)
	assert.Equal(t, []uint{1, 2}, ids(groups[0]))

	assert.Equal(t, "Food", *groups[1].Key.Category)
	assert.Equal(t, 2, *groups[1].Key.Month)
	assert.Equal(t, []uint{3}, ids(groups[1]))

	assert.Equal(t, "Tech", *groups[2].Key.Category)
	assert.Equal(t, 2023, *groups[2].Key.Year)
	assert.Equal(t, []uint{4}, ids(groups[2]))
}

func TestStrategies_Completeness(t *testing.T) {
	txs := []models.Transaction{
		tx(1, food, "2022-12-31"),
		tx(2, nil, "2023-01-01"),
		tx(3, tech, "2023-01-15"),
		tx(4, food, "2023-01-15"),
		tx(5, nil, "2023-02-28"),
		tx(6, tech, "2024-02-29"),
	}

	registry := NewRegistry()
	for _, key := range GroupingKeys {
		t.Run(string(key), func(t *testing.T) {
			strategy, err := registry.Strategy(key)
			require.NoError(t, err)

			seen := map[uint]int{}
			for _, g := range strategy.Group(txs) {
				for _, v := range g.Transactions {
					seen[v.ID]++
				}
			}
			require.Len(t, seen, len(txs))
			for _, orig := range txs {
				assert.Equal(t, 1, seen[orig.ID], "transaction %d", orig.ID)
			}
		})
	}
}

func TestStrategies_EmptyInput(t *testing.T) {
	for _, key := range GroupingKeys {
		strategy, err := NewRegistry().Strategy(key)
		require.NoError(t, err)
		groups := strategy.Group(nil)
		assert.NotNil(t, groups)
		assert.Empty(t, groups)
	}
}

func TestGroup_CarriesFullView(t *testing.T) {
	in := tx(7, food, "2023-05-05")
	groups := CategoryStrategy{}.Group([]models.Transaction{in})

	require.Len(t, groups, 1)
	v := groups[0].Transactions[0]
	assert.Equal(t, in.ID, v.ID)
	assert.Equal(t, "Food", *v.CategoryName)
	assert.True(t, in.Amount.Equal(v.Amount))
	assert.Equal(t, in.Comment, v.Comment)
	assert.Equal(t, in.CreatedAt, v.CreatedAt)
	assert.Equal(t, in.UserID, v.UserID)
}
