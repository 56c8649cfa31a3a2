// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `load` calls `validateStruct` right after defaults are applied.  Any
// failure aborts startup, so the binary never runs with a short secret, an
// unparsable listen address, or a malformed notification address.
//
// The returned error lists every failing field as “section.field: tag”,
// using koanf names so operators can map them straight back to YAML keys.

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

//
// public API
//

// validateStruct returns nil on success or one error naming every bad key.
func validateStruct(c *Config) error {
	if c.Mail.Enabled() && c.Mail.From == "" {
		return errors.New("invalid config: mail.from: required when mail.server is set")
	}
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
		msgs = append(msgs, fmt.Sprintf("%s: %s", key, fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
