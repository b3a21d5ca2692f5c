// Package validate checks decoded request bodies with go-playground/validator.
// Field names in errors use the json tag so callers see the names they sent.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

var clauseNumber = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		// "role" accepts exactly the three session roles.
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).Valid()
		})
		// "clause" is a dotted ISO clause number: "4", "4.1", "7.5.3".
		_ = v.RegisterValidation("clause", func(fl validator.FieldLevel) bool {
			return clauseNumber.MatchString(fl.Field().String())
		})
	})
	return v
}

// FieldErrors maps a json field name to the failed rule ("required", "oneof", ...).
type FieldErrors map[string]string

// Error is returned by Struct when one or more fields fail.
type Error struct {
	Fields FieldErrors
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return "validation failed: " + strings.Join(keys, ", ")
}

// Struct validates s. It returns *Error for rule failures and the raw
// validator error for programming mistakes (e.g. a non-struct argument).
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := make(FieldErrors, len(ve))
	for _, fe := range ve {
		fields[fieldPath(fe)] = fe.Tag()
	}
	return &Error{Fields: fields}
}

// fieldPath drops the top-level struct name: "createReq.theme.primary" -> "theme.primary".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// Var validates a single value against tag.
func Var(field any, tag string) error {
	return instance().Var(field, tag)
}
