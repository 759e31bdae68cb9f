package forum

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates input and converts the first violation into an InputError.
func (s *Service) check(input any) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid("", err.Error())
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return invalid(fe.Field(), "is required")
	case "min":
		return invalid(fe.Field(), fmt.Sprintf("must be at least %s characters", fe.Param()))
	case "max":
		return invalid(fe.Field(), fmt.Sprintf("must be at most %s characters", fe.Param()))
	case "email":
		return invalid(fe.Field(), "must be a valid email address")
	case "excludes":
		return invalid(fe.Field(), fmt.Sprintf("cannot contain %q", fe.Param()))
	case "gt":
		return invalid(fe.Field(), fmt.Sprintf("must be greater than %s", fe.Param()))
	default:
		return invalid(fe.Field(), fmt.Sprintf("failed %s validation", fe.Tag()))
	}
}
