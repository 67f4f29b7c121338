package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

// validate checks the `binding` tags of the domain types, the same tags gin
// evaluates when it binds request bodies.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	RegisterValidations(v)
	return v
}

// RegisterValidations installs json field names, decimal amounts and the
// notblank and biketype rules on v. gin's binding engine is set up through
// it as well.
func RegisterValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	// Both tag names are valid, so registration cannot fail.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("biketype", func(fl validator.FieldLevel) bool {
		return BikeType(fl.Field().String()).Valid()
	})
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// decimalValue lets numeric rules such as gte and lte apply to amounts.
func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// checkFields runs the tag rules of v and reports the first failure.
func checkFields(v any) error {
	return FieldError(validate.Struct(v))
}

// FieldError turns validator output into a ValidationError carrying the json
// name of the first rejected field. Other errors are returned unchanged.
func FieldError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Message: ruleMessage(fe)}
}

func ruleMessage(fe validator.FieldError) string {
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required", "notblank":
		return "must not be empty"
	case "email":
		return "enter a valid email address"
	case "biketype":
		return fmt.Sprintf("unsupported bike type %q", fe.Value())
	case "gte", "min":
		return fmt.Sprintf("must be at least %s%s", fe.Param(), unit)
	case "lte", "max":
		return fmt.Sprintf("must be at most %s%s", fe.Param(), unit)
	}
	return fmt.Sprintf("failed the %s rule", fe.Tag())
}
