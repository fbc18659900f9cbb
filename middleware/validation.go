package middleware

import (
	"strings"

	"hotel-pms/utils"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags used by request payloads.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("hotelemail", func(fl validator.FieldLevel) bool {
		return utils.IsValidEmail(strings.TrimSpace(fl.Field().String()))
	}); err != nil {
		return err
	}
	return v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := utils.ParseDate(fl.Field().String())
		return err == nil
	})
}
