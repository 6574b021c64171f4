package services

import (
	"context"
	"testing"

	"spendwise/internal/models"
	"spendwise/internal/testutil"

	"golang.org/x/crypto/bcrypt"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, false)

		user, err := svc.CreateUser(ctx, " Alice@Example.com ", "password123", "Alice", "Smith")
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected generated user ID")
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected normalized email alice@example.com, got %s", user.Email)
		}
		if user.FirstName != "Alice" {
			t.Errorf("expected first name Alice, got %s", user.FirstName)
		}
		if user.IsAdmin() || user.IsBanned {
			t.Errorf("new user should be a regular unbanned user, got %+v", user)
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, false)

		_, err := svc.CreateUser(ctx, "dup@example.com", "password123", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser(ctx, "DUP@example.com", "password456", "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("invalid_email_format", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, false)

		_, err := svc.CreateUser(ctx, "not-an-email", "password123", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("empty_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, false)

		_, err := svc.CreateUser(ctx, "a@example.com", "", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestCreateUser_password_is_hashed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db, false)

	user, err := svc.CreateUser(context.Background(), "hash@example.com", "password123", "", "")
	testutil.AssertNoError(t, err)

	if user.Password == "password123" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestGetUserByID(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db, false)
	user := testutil.CreateTestUser(t, db)

	found, err := svc.GetUserByID(ctx, user.ID)
	testutil.AssertNoError(t, err)
	if found.Email != user.Email {
		t.Errorf("expected %s, got %s", user.Email, found.Email)
	}

	_, err = svc.GetUserByID(ctx, "00000000-0000-0000-0000-000000000000")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestAttemptLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success records login time", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, false)
		user := testutil.CreateTestUser(t, db)

		loggedIn, err := svc.AttemptLogin(ctx, user.Email, testutil.TestPassword)
		testutil.AssertNoError(t, err)
		if loggedIn.LastLoginAt == nil {
			t.Fatal("expected last_login_at to be set")
		}

		var stored models.User
		db.First(&stored, "id = ?", user.ID)
		if stored.LastLoginAt == nil {
			t.Error("expected stored last_login_at")
		}
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, false)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.AttemptLogin(ctx, "nobody@example.com", testutil.TestPassword)
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

		_, err = svc.AttemptLogin(ctx, user.Email, "wrong-password")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("banned user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, false)
		user := testutil.CreateTestUser(t, db)
		_, err := svc.SetBanned(ctx, user.ID, true)
		testutil.AssertNoError(t, err)

		_, err = svc.AttemptLogin(ctx, user.Email, testutil.TestPassword)
		testutil.AssertAppError(t, err, "USER_BANNED")

		_, err = svc.AttemptLogin(ctx, user.Email, "wrong-password")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestStoreAndGetRefreshTokenHash(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db, false)
	user := testutil.CreateTestUser(t, db)

	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(ctx, user.ID, "abc123"))

	hash, err := svc.GetRefreshTokenHash(ctx, user.ID)
	testutil.AssertNoError(t, err)
	if hash != "abc123" {
		t.Errorf("expected abc123, got %s", hash)
	}

	err = svc.StoreRefreshTokenHash(ctx, "00000000-0000-0000-0000-000000000000", "x")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestRotateRefreshTokenHash(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db, false)
	user := testutil.CreateTestUser(t, db)
	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(ctx, user.ID, "first"))

	t.Run("swaps the current hash once", func(t *testing.T) {
		testutil.AssertNoError(t, svc.RotateRefreshTokenHash(ctx, user.ID, "first", "second"))

		err := svc.RotateRefreshTokenHash(ctx, user.ID, "first", "third")
		testutil.AssertAppError(t, err, "INVALID_TOKEN")

		hash, err := svc.GetRefreshTokenHash(ctx, user.ID)
		testutil.AssertNoError(t, err)
		if hash != "second" {
			t.Errorf("expected the first rotation to win, got %q", hash)
		}
	})

	t.Run("rejects an empty current hash", func(t *testing.T) {
		err := svc.RotateRefreshTokenHash(ctx, user.ID, "", "x")
		testutil.AssertAppError(t, err, "INVALID_TOKEN")
	})

	t.Run("rejects a banned user", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		testutil.AssertNoError(t, svc.StoreRefreshTokenHash(ctx, other.ID, "live"))
		if err := db.Model(other).Update("is_banned", true).Error; err != nil {
			t.Fatalf("failed to ban: %v", err)
		}

		err := svc.RotateRefreshTokenHash(ctx, other.ID, "live", "next")
		testutil.AssertAppError(t, err, "INVALID_TOKEN")
	})
}

func TestSetBanned(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db, false)
	user := testutil.CreateTestUser(t, db)
	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(ctx, user.ID, "live-token"))

	banned, err := svc.SetBanned(ctx, user.ID, true)
	testutil.AssertNoError(t, err)
	if !banned.IsBanned {
		t.Error("expected banned user")
	}

	hash, err := svc.GetRefreshTokenHash(ctx, user.ID)
	testutil.AssertNoError(t, err)
	if hash != "" {
		t.Errorf("ban should revoke the refresh token, got %q", hash)
	}

	unbanned, err := svc.SetBanned(ctx, user.ID, false)
	testutil.AssertNoError(t, err)
	if unbanned.IsBanned {
		t.Error("expected unbanned user")
	}

	_, err = svc.AttemptLogin(ctx, user.Email, testutil.TestPassword)
	testutil.AssertNoError(t, err)

	_, err = svc.SetBanned(ctx, "00000000-0000-0000-0000-000000000000", true)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}
