package requests

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidateAddressRequest body of POST /validate-address
type ValidateAddressRequest struct {
	Address *string `json:"address" binding:"required,notblank"` // raw address line
}

// BatchValidateRequest body of POST /validate-address/batch
type BatchValidateRequest struct {
	Addresses []string `json:"addresses" binding:"required,min=1"` // upper bound comes from config
}

// InvalidateCacheRequest optional body of POST /v1/admin/cache/invalidate
type InvalidateCacheRequest struct {
	Address string `json:"address"` // empty clears the whole cache
}

// FieldIssue one request validation problem
type FieldIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

var registerOnce sync.Once

// RegisterValidators installs the custom rules on gin's validator. Safe to
// call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("notblank", notBlank)
	})
}

// notBlank rejects strings that are empty after trimming whitespace
func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

// Issues translates a binding error into field issues. ok is false when err
// is not a request problem (and should be treated as internal).
func Issues(err error) (issues []FieldIssue, ok bool) {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		fieldErrs validator.ValidationErrors
	)

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.As(err, &syntaxErr):
		return []FieldIssue{{Path: "", Message: "request body must be valid JSON"}}, true

	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return []FieldIssue{{Path: "", Message: "request body must be a JSON object"}}, true
		}
		return []FieldIssue{{Path: typeErr.Field, Message: typeErr.Field + " must be " + jsonTypeName(typeErr.Type)}}, true

	case errors.As(err, &fieldErrs):
		issues = make([]FieldIssue, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			issues = append(issues, FieldIssue{Path: fe.Field(), Message: fieldMessage(fe)})
		}
		return issues, true
	}

	return nil, false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "notblank":
		return fe.Field() + " must not be empty"
	case "min":
		return fe.Field() + " must contain at least " + fe.Param() + " item(s)"
	default:
		return fe.Field() + " is invalid"
	}
}

func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Struct, reflect.Map:
		return "an object"
	default:
		return "a " + t.Kind().String()
	}
}
