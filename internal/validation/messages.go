package validation

import (
	"fmt"
	"strings"
)

func Message(field, tag, param string) string {
	field = strings.ReplaceAll(strings.ToLower(field), "_", " ")

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, param)
	case "e164":
		return fmt.Sprintf("%s must be an E.164 phone number", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
