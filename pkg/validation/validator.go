package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// New returns a validator configured to report field names from json tags.
// The wizard rules table and the HTTP layer share this configuration so a
// field fails with the same name everywhere.
func New() *validator.Validate {
	v := validator.New()
	registerTagName(v)
	return v
}

// Init configures the global validator used by Gin's binding.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerTagName(v)
	}
}

func registerTagName(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ToDetails converts validation/binding errors into a map[field]message
// suitable for API error details and wizard validation results.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = FormatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

// FormatFieldError renders a single field error as a stable, human-friendly
// message.
func FormatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "required_if":
		return "is required if " + param
	case "email":
		return "must be a valid email"
	case "e164":
		return "must be a valid phone number"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		if param != "" {
			if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
				return "must have at least " + param + " items"
			}
			return "must be at least " + param + " characters long"
		}
		return "too small"
	case "max":
		if param != "" {
			return "must be at most " + param + " characters long"
		}
		return "too large"
	case "datetime":
		if param != "" {
			return "must match time format " + param
		}
		return "must be a valid time"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	default:
		if param != "" {
			return "validation failed for '" + tag + "' with parameter '" + param + "'"
		}
		return "validation failed for '" + tag + "'"
	}
}
