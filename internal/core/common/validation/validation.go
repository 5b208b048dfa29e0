package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/core/common/dateutil"
)

var (
	once     sync.Once
	validate *validator.Validate
	enums    = map[string]map[string]struct{}{}
	enumMu   sync.RWMutex
)

// RegisterEnum exposes an allow-list as a validation tag, e.g. `validate:"enum=grant_status"`.
func RegisterEnum(name string, values ...string) {
	enumMu.Lock()
	defer enumMu.Unlock()
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	enums[name] = set
}

// InEnum reports whether value belongs to the registered allow-list.
func InEnum(name, value string) bool {
	enumMu.RLock()
	defer enumMu.RUnlock()
	_, ok := enums[name][value]
	return ok
}

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
			return InEnum(fl.Param(), fl.Field().String())
		})
		_ = validate.RegisterValidation("datestr", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if s == "" {
				return true
			}
			_, err := dateutil.Parse(s)
			return err == nil
		})
	})
	return validate
}

// Struct validates dto against its `validate` tags and converts failures into a 400 AppError.
func Struct(dto interface{}) *apperrors.AppError {
	err := instance().Struct(dto)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error(), apperrors.ErrCodeValidationFailed)
	}

	out := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apperrors.ValidationError{
			Field:   fieldPath(fe),
			Message: message(fe),
			Code:    strings.ToUpper(fe.Tag()),
		})
	}
	return apperrors.NewValidationFieldErrors(out...)
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "enum":
		return fmt.Sprintf("%s is not a valid %s", field, fe.Param())
	case "datestr":
		return fmt.Sprintf("%s must be an ISO 8601 date", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
