package server

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"MarketOverview/internal/model"
)

// RegisterValidators adds the custom binding rules to gin's validator.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("ticker", validateTicker)
		_ = v.RegisterValidation("category", validateCategory)
	}
}

func validateTicker(fl validator.FieldLevel) bool {
	_, err := model.ParseTicker(fl.Field().String())
	return err == nil
}

func validateCategory(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) > 32 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == ' ':
		default:
			return false
		}
	}
	return true
}
