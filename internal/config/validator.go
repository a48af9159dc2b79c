// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `LoadDir` calls `validateStruct` immediately after it unmarshals the
// merged Koanf tree and fills defaults.  Any validation error aborts
// startup, so the binary never runs with partial or malformed settings.
//
// Custom rules
// ------------
//   - `nowww` – main-site hosts are compared against the request host
//     *after* one leading `www` label is removed, so a configured host
//     that itself starts with `www.` could never match.
package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	_ = val.RegisterValidation("nowww", func(fl validator.FieldLevel) bool {
		return !strings.HasPrefix(fl.Field().String(), "www.")
	})
	return val
}

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
