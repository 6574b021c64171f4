package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/query"
	"spendwise/internal/testutil"
)

var day = time.Date(2023, 1, 10, 12, 0, 0, 0, time.UTC)

func TestCategoryStore_GetByID(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	s := NewCategoryStore(db)

	cat := testutil.CreateGlobalCategory(t, db)

	got, err := s.GetByID(ctx, cat.ID)
	testutil.AssertNoError(t, err)
	if got.Name != cat.Name {
		t.Errorf("expected %q, got %q", cat.Name, got.Name)
	}

	if _, err := s.GetByID(ctx, 99999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryStore_Create_KeepsInactive(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	s := NewCategoryStore(db)

	cat := &models.Category{Name: "Dormant", IsActive: false}
	testutil.AssertNoError(t, s.Create(ctx, cat))

	got, err := s.GetByID(ctx, cat.ID)
	testutil.AssertNoError(t, err)
	if got.IsActive {
		t.Error("inactive category was stored as active")
	}
}

func TestCategoryStore_List(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	s := NewCategoryStore(db)
	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)

	b := testutil.CreateTestCategoryNamed(t, db, "Bravo", &alice.ID, true)
	a := testutil.CreateTestCategoryNamed(t, db, "Alpha", &alice.ID, false)
	g := testutil.CreateTestCategoryNamed(t, db, "Alpha", nil, true)
	testutil.CreateTestCategoryNamed(t, db, "Hidden", nil, false)
	testutil.CreateTestCategoryNamed(t, db, "Bobs", &bob.ID, true)

	ids := func(cats []models.Category) []uint {
		out := make([]uint, len(cats))
		for i, c := range cats {
			out[i] = c.ID
		}
		return out
	}
	equal := func(a, b []uint) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}

	t.Run("visible to excludes inactive", func(t *testing.T) {
		cats, total, err := s.List(ctx, CategoryFilter{VisibleTo: &alice.ID}, query.CategorySort{}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if total != 2 || !equal(ids(cats), []uint{b.ID, g.ID}) {
			t.Errorf("unexpected listing %v (total %d)", ids(cats), total)
		}
	})

	t.Run("include inactive reveals only own", func(t *testing.T) {
		cats, total, err := s.List(ctx, CategoryFilter{VisibleTo: &alice.ID, IncludeInactive: true}, query.CategorySort{}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if total != 3 || !equal(ids(cats), []uint{b.ID, a.ID, g.ID}) {
			t.Errorf("unexpected listing %v (total %d)", ids(cats), total)
		}
	})

	t.Run("name ties broken by id", func(t *testing.T) {
		sort := query.CategorySort{Field: query.CategorySortName}
		cats, _, err := s.List(ctx, CategoryFilter{VisibleTo: &alice.ID, IncludeInactive: true}, sort, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if !equal(ids(cats), []uint{a.ID, g.ID, b.ID}) {
			t.Errorf("unexpected order %v", ids(cats))
		}
	})

	t.Run("owner filter", func(t *testing.T) {
		_, total, err := s.List(ctx, CategoryFilter{Owner: &bob.ID}, query.CategorySort{}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if total != 1 {
			t.Errorf("expected 1, got %d", total)
		}
	})

	t.Run("count ignores paging", func(t *testing.T) {
		cats, total, err := s.List(ctx, CategoryFilter{}, query.CategorySort{Descending: true}, pagination.PageRequest{Page: 1, PageSize: 2})
		testutil.AssertNoError(t, err)
		if total != 5 || len(cats) != 2 {
			t.Errorf("expected 2 of 5, got %d of %d", len(cats), total)
		}
		if cats[0].ID < cats[1].ID {
			t.Errorf("expected descending ids, got %v", ids(cats))
		}
	})
}

func TestCategoryStore_Update(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	s := NewCategoryStore(db)
	cat := testutil.CreateGlobalCategory(t, db)

	cat.Name = "Renamed"
	cat.IsActive = false
	testutil.AssertNoError(t, s.Update(ctx, cat))

	got, _ := s.GetByID(ctx, cat.ID)
	if got.Name != "Renamed" || got.IsActive {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := s.Update(ctx, &models.Category{ID: 99999, Name: "Ghost"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryStore_Delete_SetsTransactionsUncategorized(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	s := NewCategoryStore(db)
	alice := testutil.CreateTestUser(t, db)
	doomed := testutil.CreateTestCategory(t, db, &alice.ID, true)
	kept := testutil.CreateTestCategory(t, db, &alice.ID, true)

	t1 := testutil.CreateTestTransaction(t, db, alice.ID, &doomed.ID, "1", day)
	t2 := testutil.CreateTestTransaction(t, db, alice.ID, &doomed.ID, "2", day)
	t3 := testutil.CreateTestTransaction(t, db, alice.ID, &kept.ID, "3", day)

	testutil.AssertNoError(t, s.Delete(ctx, doomed.ID))

	for _, id := range []uint{t1.ID, t2.ID} {
		var tx models.Transaction
		testutil.AssertNoError(t, db.First(&tx, id).Error)
		if tx.CategoryID != nil {
			t.Errorf("transaction %d still references deleted category", id)
		}
	}
	var untouched models.Transaction
	db.First(&untouched, t3.ID)
	if untouched.CategoryID == nil || *untouched.CategoryID != kept.ID {
		t.Error("unrelated transaction lost its category")
	}

	if err := s.Delete(ctx, doomed.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestTransactionStore_CRUD(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	s := NewTransactionStore(db)
	alice := testutil.CreateTestUser(t, db)
	food := testutil.CreateTestCategoryNamed(t, db, "Food", nil, true)
	tech := testutil.CreateTestCategoryNamed(t, db, "Tech", nil, true)

	tx := &models.Transaction{
		CategoryID: &food.ID,
		Amount:     decimal.RequireFromString("12.34"),
		Comment:    "groceries",
		CreatedAt:  day,
		UserID:     alice.ID,
	}
	testutil.AssertNoError(t, s.Create(ctx, tx))
	if tx.Category == nil || tx.Category.Name != "Food" {
		t.Fatalf("expected category loaded after create, got %+v", tx.Category)
	}

	tx.CategoryID = &tech.ID
	tx.Amount = decimal.RequireFromString("-5")
	tx.Comment = "refund"
	tx.CreatedAt = day.AddDate(1, 0, 0)
	testutil.AssertNoError(t, s.Update(ctx, tx))
	if tx.Category == nil || tx.Category.Name != "Tech" {
		t.Errorf("expected category reloaded after update, got %+v", tx.Category)
	}

	got, err := s.GetByID(ctx, tx.ID)
	testutil.AssertNoError(t, err)
	if got.Comment != "refund" || !got.Amount.Equal(decimal.NewFromInt(-5)) {
		t.Errorf("update not persisted: %+v", got)
	}
	if !got.CreatedAt.Equal(day) {
		t.Errorf("created_at must not be written, got %v", got.CreatedAt)
	}
	if got.Category == nil || got.Category.Name != "Tech" {
		t.Errorf("expected preloaded category, got %+v", got.Category)
	}

	testutil.AssertNoError(t, s.Delete(ctx, tx.ID))
	if _, err := s.GetByID(ctx, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.Update(ctx, tx); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTransactionStore_ListWithCategory(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	s := NewTransactionStore(db)
	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)
	zeta := testutil.CreateTestCategoryNamed(t, db, "Zeta", nil, true)
	beta := testutil.CreateTestCategoryNamed(t, db, "Beta", nil, true)

	jan := testutil.CreateTestTransaction(t, db, alice.ID, &zeta.ID, "1", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	feb := testutil.CreateTestTransaction(t, db, alice.ID, nil, "2", time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC))
	mar := testutil.CreateTestTransaction(t, db, alice.ID, &beta.ID, "3", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC))
	testutil.CreateTestTransaction(t, db, bob.ID, &beta.ID, "4", time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC))

	from := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	txs, err := s.ListWithCategory(ctx, TransactionFilter{Owner: &alice.ID, From: &from, To: &to}, query.TransactionSort{Field: query.TransactionSortCategory})
	testutil.AssertNoError(t, err)

	if len(txs) != 2 || txs[0].ID != mar.ID || txs[1].ID != feb.ID {
		t.Fatalf("unexpected result %+v", txs)
	}
	if txs[0].Category == nil || txs[0].Category.Name != "Beta" {
		t.Errorf("expected preloaded Beta, got %+v", txs[0].Category)
	}
	if txs[1].Category != nil {
		t.Errorf("expected no category, got %+v", txs[1].Category)
	}

	all, err := s.ListWithCategory(ctx, TransactionFilter{Owner: &alice.ID}, query.TransactionSort{Field: query.TransactionSortDate})
	testutil.AssertNoError(t, err)
	if len(all) != 3 || all[0].ID != jan.ID {
		t.Errorf("expected 3 ordered by date, got %d", len(all))
	}
}

func TestTransactionStore_List_Paged(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	s := NewTransactionStore(db)
	alice := testutil.CreateTestUser(t, db)
	cat := testutil.CreateGlobalCategory(t, db)

	for i := 0; i < 5; i++ {
		testutil.CreateTestTransaction(t, db, alice.ID, &cat.ID, "1", day.Add(time.Duration(i)*time.Hour))
	}

	txs, total, err := s.List(ctx, TransactionFilter{Owner: &alice.ID}, query.TransactionSort{Field: query.TransactionSortCategory, Descending: true}, pagination.PageRequest{Page: 2, PageSize: 2})
	testutil.AssertNoError(t, err)
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(txs))
	}
	if txs[0].ID >= txs[1].ID {
		t.Errorf("equal category names must fall back to ascending id, got %d then %d", txs[0].ID, txs[1].ID)
	}
}
