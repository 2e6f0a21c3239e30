package config

import (
	"fmt"
	"reflect"

	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
)

// Validator is an optional interface for configuration structs that
// need cross-field or range checks beyond what tags express. When the
// struct passed to [Loader.Load] implements Validator, Validate runs
// after the required-tag pass succeeds.
//
// Validate returns an error for the first problem found, or nil.
// [*sserr.Error] values pass through unchanged; anything else is
// wrapped with [sserr.CategoryValidation].
//
// Example:
//
//	type AlertConfig struct {
//	    WebhookURL  string `env:"WEBHOOK_URL" required:"true"`
//	    HealthFloor int    `env:"HEALTH_FLOOR"`
//	}
//
//	func (c *AlertConfig) Validate() error {
//	    if c.HealthFloor < 0 || c.HealthFloor > 100 {
//	        return sserr.Newf(sserr.CategoryValidation,
//	            "config: health floor %d is outside [0, 100]", c.HealthFloor)
//	    }
//	    return nil
//	}
type Validator interface {
	Validate() error
}

// validate runs the required-tag pass first, then the Validator
// interface when implemented. cfg keeps the original interface value so
// the Validator assertion sees pointer receivers; rv is the already
// dereferenced struct value.
func validate(cfg any, rv reflect.Value) error {
	if err := validateRequired(rv, ""); err != nil {
		return err
	}

	if v, ok := cfg.(Validator); ok {
		if err := v.Validate(); err != nil {
			// Pass through sserr.Error instances unchanged.
			if _, isSSErr := sserr.AsError(err); isSSErr {
				return err
			}
			return sserr.Wrap(err, sserr.CategoryValidation,
				"config: custom validation failed")
		}
	}

	return nil
}

// validateRequired walks the struct and fails on the first field tagged
// `required:"true"` that still holds its zero value. path accumulates
// the dotted field path for error messages (e.g., "Webhook.URL").
//
// Every nested struct is entered; unexported fields are not settable
// and are skipped, so opaque structs like time.Time pass through
// without effect.
func validateRequired(rv reflect.Value, path string) error {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		sf := rt.Field(i)

		if !field.CanSet() {
			continue
		}

		fieldPath := sf.Name
		if path != "" {
			fieldPath = path + "." + sf.Name
		}

		if field.Kind() == reflect.Struct {
			if err := validateRequired(field, fieldPath); err != nil {
				return err
			}
			continue
		}

		if sf.Tag.Get("required") != "true" {
			continue
		}

		if field.IsZero() {
			return sserr.NewWithCode(sserr.CategoryValidation, sserr.CodeValidationRequired,
				fmt.Sprintf("config: required field %q is empty", fieldPath))
		}
	}

	return nil
}
