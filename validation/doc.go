// Package validation checks configuration structs and request input.
//
// Struct tag validation uses go-playground/validator and reports field
// names from the mapstructure or json tag:
//
//	type Timing struct {
//	    TakeCount int `mapstructure:"take_count" validate:"gte=0"`
//	}
//	err := validation.Validate(timing)
//
// Programmatic validation collects field errors and converts them to a
// single INVALID_INPUT AppError:
//
//	v := validation.New()
//	v.Required("name", name).Pattern("name", name, `^[a-zA-Z]+$`)
//	if err := v.Validate(); err != nil { ... }
package validation
