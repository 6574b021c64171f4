// Package access decides who may read or mutate categories and transactions.
//
// Every function here is pure: callers resolve the entity first and turn a
// false result into the same not-found outcome they use for a missing entity.
package access

import "spendwise/internal/models"

// Principal is the authenticated identity performing a request.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// Scope selects whether the global clause applies to a category check.
type Scope bool

const (
	// AllowGlobal grants access to global categories. Used on read paths.
	AllowGlobal Scope = true
	// OwnerOnly restricts access to the owner and admins. Used on mutation paths.
	OwnerOnly Scope = false
)

// CanAccessCategory reports whether p may access c under the given scope.
// Admins always may; owners always may; anyone may when scope is AllowGlobal
// and the category is global.
func CanAccessCategory(p Principal, c *models.Category, scope Scope) bool {
	if p.IsAdmin {
		return true
	}
	if c.IsOwnedBy(p.UserID) {
		return true
	}
	return scope == AllowGlobal && c.IsGlobal()
}

// CanAccessTransaction reports whether p may read or mutate t.
// Transactions have no shared form: owner or admin only.
func CanAccessTransaction(p Principal, t *models.Transaction) bool {
	return p.IsAdmin || t.UserID == p.UserID
}

// CanUseCategoryForTransaction reports whether p may record a new transaction against c.
// The category must be active and either global or owned by p. The admin flag
// does not widen this check; admins use the dedicated admin creation path.
func CanUseCategoryForTransaction(p Principal, c *models.Category) bool {
	if !c.IsActive {
		return false
	}
	return c.IsGlobal() || c.IsOwnedBy(p.UserID)
}
