// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("update_mode", validateUpdateMode)
		_ = v.RegisterValidation("period", validatePeriod)
		_ = v.RegisterValidation("tx_date", validateTransactionDate)
		_ = v.RegisterValidation("app_view", validateAppView)
	}
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense", "loan_payment":
		return true
	}
	return false
}

func validateUpdateMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "single", "all-future", "renegotiate":
		return true
	}
	return false
}

func validatePeriod(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01", fl.Field().String())
	return err == nil
}

func validateTransactionDate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func validateAppView(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "dashboard", "transactions", "invoices", "ai-chat", "settings":
		return true
	}
	return false
}
