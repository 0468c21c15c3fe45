package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput marks request messages rejected before reaching a handler.
var ErrInvalidInput = errors.New("validation: invalid input")

// FieldError is a single failed constraint.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

// Error carries every failed constraint of one message.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, describe(f))
	}
	return strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error { return ErrInvalidInput }

// StructValidator implements the bus Validator with go-playground/validator tags.
type StructValidator struct {
	validate *validator.Validate
}

func New() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return toSnake(fld.Name)
		}
		return name
	})
	return &StructValidator{validate: v}
}

func (s *StructValidator) Validate(_ context.Context, message any) error {
	if message == nil {
		return nil
	}
	t := reflect.TypeOf(message)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	err := s.validate.Struct(message)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

func describe(f FieldError) string {
	switch f.Rule {
	case "required":
		return f.Field + " is required"
	case "email":
		return f.Field + " must be a valid email address"
	case "max":
		return fmt.Sprintf("%s must be at most %s", f.Field, f.Param)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", f.Field, f.Param)
	case "lte":
		return fmt.Sprintf("%s must be at most %s", f.Field, f.Param)
	case "len":
		return fmt.Sprintf("%s must have length %s", f.Field, f.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f.Field, strings.ReplaceAll(f.Param, " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s", f.Field, f.Rule)
	}
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(name[i-1] >= 'A' && name[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
