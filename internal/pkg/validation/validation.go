// Package validation checks the shape of request bodies before they reach
// the ledger. Domain bounds are enforced again by the ledger itself.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"airledger-backend/internal/domain"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// country codes are upper-case letters only
var countryRe = regexp.MustCompile(`^[A-Z]{2,3}$`)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("country", func(fl validator.FieldLevel) bool {
			return countryRe.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("identity", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseIdentity(fl.Field().String())
			return err == nil
		})
		_ = validate.RegisterValidation("listing_type", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseListingType(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// FieldError is one failed rule, keyed by the JSON field name.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// Error is a ValidationError carrying per-field details.
type Error struct {
	domain.ValidationError
	Fields []FieldError
}

func (e *Error) Unwrap() error { return e.ValidationError }

// Struct validates v against its `validate` tags.
func Struct(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		names = append(names, fe.Field())
	}
	out.ValidationError = domain.ValidationError(fmt.Sprintf("Invalid fields: %s", strings.Join(names, ", ")))
	return out
}
