package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing labels
var FieldLabels = map[string]string{
	// Resume fields
	"Name":        "Name",
	"PhoneNumber": "Phone number",
	"Birthday":    "Birthday",
	"WorkingExp":  "Working experience",
	"Education":   "Education",
	"Area":        "Area",
	"ResumeURL":   "Resume URL",
	"Operator":    "Operator",

	// Account fields
	"Username": "Username",
	"Email":    "Email",
	"Password": "Password",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.StructField())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", label)

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at least %s", label, param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at most %s", label, param)

	case "email":
		return fmt.Sprintf("%s: invalid email format", label)

	case "valid_name":
		return fmt.Sprintf("%s: may only contain letters, spaces and . ' -", label)

	case "valid_phone":
		return fmt.Sprintf("%s: invalid phone number (at least 7 digits)", label)

	case "no_emoji":
		return fmt.Sprintf("%s: must not contain emoji or special symbols", label)

	default:
		return fmt.Sprintf("%s: failed validation (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	// Slice elements report as "Education[0]"
	base, _, _ := strings.Cut(fieldName, "[")
	if label, ok := FieldLabels[base]; ok {
		return label
	}
	return formatCamelCase(base)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
