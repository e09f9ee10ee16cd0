package integrity

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// shape runs the struct-tag checks declared on the models. Validate instances
// cache struct metadata and are safe for concurrent use.
var shape = newShapeValidator()

func newShapeValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("digits", exactDigits); err != nil {
		panic(err)
	}
	return v
}

// exactDigits accepts strings made of exactly N ASCII digits, N being the tag parameter.
func exactDigits(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	s := fl.Field().String()
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// checkShape collects one message per failing field. The validator stops at
// the first failing tag of a field but keeps going across fields.
func checkShape(candidate any, overrides map[string]string, into FieldErrors) error {
	err := shape.Struct(candidate)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("shape check: %w", err)
	}
	for _, fe := range fieldErrs {
		into.Add(fe.Field(), shapeMessage(fe, overrides))
	}
	return nil
}

func shapeMessage(fe validator.FieldError, overrides map[string]string) string {
	if msg, ok := overrides[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	label := fe.StructField()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "max":
		return fmt.Sprintf("The field %s must be a string with a maximum length of %s.", label, fe.Param())
	case "email":
		return fmt.Sprintf("The %s field is not a valid e-mail address.", label)
	case "digits":
		return fmt.Sprintf("The %s field must be exactly %s digits.", label, fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}
