package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"spendwise/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a regular user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestAdmin creates a user holding the admin role.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := CreateTestUserWithEmail(t, db, fmt.Sprintf("admin%d@test.com", nextID()))
	if err := db.Model(user).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("failed to promote test admin: %v", err)
	}
	user.Role = models.RoleAdmin
	return user
}

// CreateTestUserWithEmail creates a regular user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category owned by userID. A nil owner creates
// a global category.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID *string, active bool) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, fmt.Sprintf("Cat %d", nextID()), userID, active)
}

// CreateTestCategoryNamed creates a category with an explicit name.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, name string, userID *string, active bool) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:     name,
		UserID:   userID,
		IsActive: active,
	}
	// Select forces is_active to be written even when false.
	if err := db.Select("name", "user_id", "is_active").Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateGlobalCategory creates an active category with no owner.
func CreateGlobalCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()
	return CreateTestCategory(t, db, nil, true)
}

// CreateTestTransaction creates a transaction recorded at createdAt.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, categoryID *uint, amount string, createdAt time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     decimal.RequireFromString(amount),
		Comment:    fmt.Sprintf("Test transaction %d", nextID()),
		CreatedAt:  createdAt,
	}
	if err := db.Omit("Category").Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
