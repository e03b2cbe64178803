package handlers

import (
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/platform/config"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// The account_code binding tag lets request structs validate GL codes at
// bind time. Registered at package init so tests that wire individual route
// groups get it too.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("account_code", func(fl validator.FieldLevel) bool {
			return config.ValidateAccountCodeFormat(fl.Field().String()) == nil
		})
	}
}
