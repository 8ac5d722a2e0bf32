package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"go-stockyng/internal/model"
)

var decimalPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their json names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// non-negative decimal written as text, e.g. "12" or "3.50"
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		return IsDecimal(fl.Field().String())
	})

	// required after trimming whitespace
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// ValidateStruct returns a *model.ValidationError naming the first field
// that fails, or nil.
func ValidateStruct(data interface{}) error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &model.ValidationError{Field: verrs[0].Field(), Tag: verrs[0].Tag()}
	}
	return err
}

// IsDecimal reports whether s is a non-negative decimal string.
func IsDecimal(s string) bool {
	return decimalPattern.MatchString(strings.TrimSpace(s))
}
