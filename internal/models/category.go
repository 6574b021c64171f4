package models

// Category groups transactions. A nil UserID marks a global category that
// every user can read; any other value makes it private to that user.
type Category struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"size:20;not null" json:"name"`
	UserID   *string `gorm:"type:uuid;index" json:"user_id"`
	IsActive bool    `gorm:"not null" json:"is_active"`
}

// IsGlobal reports whether the category has no owner.
func (c *Category) IsGlobal() bool {
	return c.UserID == nil
}

// IsOwnedBy reports whether the category is private to userID.
func (c *Category) IsOwnedBy(userID string) bool {
	return c.UserID != nil && *c.UserID == userID
}

// CategoryView is the outward representation of a category.
type CategoryView struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	UserID   *string `json:"user_id"`
	IsActive bool    `json:"is_active"`
}

// View converts the category to its outward representation.
func (c *Category) View() CategoryView {
	return CategoryView{
		ID:       c.ID,
		Name:     c.Name,
		UserID:   c.UserID,
		IsActive: c.IsActive,
	}
}
