// Package query defines the sort orders accepted by list and report queries.
//
// Request strings are parsed into enums once, at the HTTP boundary, so the
// set of accepted names and the set of orders the store can build never drift.
package query

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownSortField is returned for a sort_by value outside the accepted set.
var ErrUnknownSortField = errors.New("unknown sort field")

// CategorySortField enumerates the sortable category columns.
type CategorySortField int

const (
	CategorySortID CategorySortField = iota
	CategorySortName
)

var categorySortNames = map[string]CategorySortField{
	"id":   CategorySortID,
	"name": CategorySortName,
}

func (f CategorySortField) String() string {
	switch f {
	case CategorySortName:
		return "name"
	default:
		return "id"
	}
}

// CategorySort is a validated category ordering. The zero value sorts by id ascending.
type CategorySort struct {
	Field      CategorySortField
	Descending bool
}

// ParseCategorySort validates sortBy case-insensitively. An empty value
// selects the default id ordering.
func ParseCategorySort(sortBy string, descending bool) (CategorySort, error) {
	field, err := lookup(categorySortNames, sortBy, CategorySortID)
	if err != nil {
		return CategorySort{}, err
	}
	return CategorySort{Field: field, Descending: descending}, nil
}

// TransactionSortField enumerates the sortable transaction columns.
type TransactionSortField int

const (
	TransactionSortID TransactionSortField = iota
	// TransactionSortCategory orders by category name, uncategorized last.
	TransactionSortCategory
	TransactionSortAmount
	TransactionSortDate
)

var transactionSortNames = map[string]TransactionSortField{
	"id":       TransactionSortID,
	"category": TransactionSortCategory,
	"amount":   TransactionSortAmount,
	"date":     TransactionSortDate,
}

func (f TransactionSortField) String() string {
	switch f {
	case TransactionSortCategory:
		return "category"
	case TransactionSortAmount:
		return "amount"
	case TransactionSortDate:
		return "date"
	default:
		return "id"
	}
}

// TransactionSort is a validated transaction ordering. The zero value sorts by id ascending.
type TransactionSort struct {
	Field      TransactionSortField
	Descending bool
}

// ParseTransactionSort validates sortBy case-insensitively. An empty value
// selects the default id ordering.
func ParseTransactionSort(sortBy string, descending bool) (TransactionSort, error) {
	field, err := lookup(transactionSortNames, sortBy, TransactionSortID)
	if err != nil {
		return TransactionSort{}, err
	}
	return TransactionSort{Field: field, Descending: descending}, nil
}

// AcceptedCategorySortFields lists the names ParseCategorySort accepts.
func AcceptedCategorySortFields() []string { return acceptedNames(categorySortNames) }

// AcceptedTransactionSortFields lists the names ParseTransactionSort accepts.
func AcceptedTransactionSortFields() []string { return acceptedNames(transactionSortNames) }

// acceptedNames returns the keys of names ordered by field.
func acceptedNames[F ~int](names map[string]F) []string {
	keys := make([]string, 0, len(names))
	for name := range names {
		keys = append(keys, name)
	}
	slices.SortFunc(keys, func(a, b string) int { return cmp.Compare(names[a], names[b]) })
	return keys
}

func lookup[F any](names map[string]F, sortBy string, fallback F) (F, error) {
	key := strings.ToLower(strings.TrimSpace(sortBy))
	if key == "" {
		return fallback, nil
	}
	field, ok := names[key]
	if !ok {
		return fallback, fmt.Errorf("%w: %q", ErrUnknownSortField, sortBy)
	}
	return field, nil
}
