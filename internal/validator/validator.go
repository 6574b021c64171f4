// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"spendwise/internal/query"
	"spendwise/internal/report"
)

const (
	minCategoryName = 3
	maxCategoryName = 20
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerOn(v)
	}
}

func registerOn(v *validator.Validate) {
	_ = v.RegisterValidation("category_name", validateCategoryName)
	_ = v.RegisterValidation("grouping", validateGrouping)
	_ = v.RegisterValidation("transaction_sort", validateTransactionSort)
}

// validateCategoryName checks the length after trimming surrounding whitespace.
func validateCategoryName(fl validator.FieldLevel) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
	return n >= minCategoryName && n <= maxCategoryName
}

func validateGrouping(fl validator.FieldLevel) bool {
	_, err := report.ParseGroupingKey(fl.Field().String())
	return err == nil
}

func validateTransactionSort(fl validator.FieldLevel) bool {
	_, err := query.ParseTransactionSort(fl.Field().String(), false)
	return err == nil
}
