// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"budgetly/internal/cycle"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom tags on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("transaction_source", validateTransactionSource)
	_ = v.RegisterValidation("category_type", validateCategoryType)
	_ = v.RegisterValidation("frequency", validateFrequency)
	_ = v.RegisterValidation("weekday", validateWeekday)
	_ = v.RegisterValidation("anchor_day", validateAnchorDay)
	_ = v.RegisterValidation("month", validateMonth)
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validateTransactionSource(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "fixed", "recurring", "manual":
		return true
	}
	return false
}

func validateCategoryType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

// validateFrequency accepts the reset types shared by budgets and recurring
// expenses.
func validateFrequency(fl validator.FieldLevel) bool {
	return cycle.Frequency(fl.Field().String()).IsValid()
}

func validateWeekday(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n >= 1 && n <= 7
}

func validateAnchorDay(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n >= 1 && n <= cycle.MaxAnchorDay
}

func validateMonth(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n >= 1 && n <= 12
}
