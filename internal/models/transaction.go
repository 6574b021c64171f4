package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction represents a financial transaction in the system.
// CreatedAt is stamped once by the service and never updated; GORM only fills
// it when left zero, which the service never does.
type Transaction struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CategoryID *uint           `gorm:"index" json:"category_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"amount"`
	Comment    string          `gorm:"size:255;not null" json:"comment"`
	CreatedAt  time.Time       `gorm:"not null;index" json:"created_at"`
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

// AfterFind pins CreatedAt to UTC. The postgres driver decodes timestamptz
// into the process's local zone, and reports take the year and month from
// the stored instant as written.
func (t *Transaction) AfterFind(tx *gorm.DB) error {
	t.CreatedAt = t.CreatedAt.UTC()
	return nil
}

// TransactionView is the outward representation of a transaction, carrying
// the category name so reports and lists need no second lookup.
type TransactionView struct {
	ID           uint            `json:"id"`
	CategoryID   *uint           `json:"category_id"`
	CategoryName *string         `json:"category_name"`
	Amount       decimal.Decimal `json:"amount"`
	Comment      string          `json:"comment"`
	CreatedAt    time.Time       `json:"created_at"`
	UserID       string          `json:"user_id"`
}

// View converts the transaction to its outward representation. The Category
// relation must be preloaded for CategoryName to be populated.
func (t *Transaction) View() TransactionView {
	v := TransactionView{
		ID:         t.ID,
		CategoryID: t.CategoryID,
		Amount:     t.Amount,
		Comment:    t.Comment,
		CreatedAt:  t.CreatedAt,
		UserID:     t.UserID,
	}
	if t.Category != nil {
		name := t.Category.Name
		v.CategoryName = &name
	}
	return v
}
