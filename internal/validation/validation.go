// file: internal/validation/validation.go
package validation

import (
	"fmt"
	"strings"

	"allowancehub/internal/services"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct validates a request struct against its validate tags and
// returns a ValidationError carrying the failing fields, or nil.
func ValidateStruct(s interface{}) error {
	if s == nil {
		return nil
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return services.NewValidationError("invalid request", err)
	}

	fields := make([]map[string]interface{}, 0, len(ve))
	messages := make([]string, 0, len(ve))
	for _, e := range ve {
		fields = append(fields, map[string]interface{}{
			"field":   strings.ToLower(e.Field()),
			"rule":    e.Tag(),
			"message": describeFailure(e),
		})
		messages = append(messages, describeFailure(e))
	}

	serviceErr := services.NewValidationError(strings.Join(messages, "; "), nil)
	serviceErr.Details = map[string]interface{}{"fields": fields}
	return serviceErr
}

// describeFailure renders one validation failure in plain language
func describeFailure(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}
