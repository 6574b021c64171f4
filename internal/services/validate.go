package services

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	apperrors "spendwise/internal/errors"
)

const (
	minCategoryName = 3
	maxCategoryName = 20
	maxComment      = 255
)

// maxAmount bounds the absolute value of a transaction amount.
var maxAmount = decimal.New(1, 11)

// Callers are expected to validate at the request boundary; these checks run
// again here because the services are also reachable without it.

func normalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < minCategoryName || n > maxCategoryName {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "category name must be between 3 and 20 characters")
	}
	return name, nil
}

func normalizeComment(comment string) (string, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "comment is required")
	}
	if utf8.RuneCountInString(comment) > maxComment {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "comment must be at most 255 characters")
	}
	return comment, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.Abs().GreaterThan(maxAmount) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be between -100000000000 and 100000000000")
	}
	if !amount.Equal(amount.Round(2)) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount supports at most 2 decimal places")
	}
	return nil
}
