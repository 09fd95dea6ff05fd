package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/artpar/notekeeper/internal/core/domain"
)

// =============================================================================
// Client Validation
// =============================================================================

const (
	MinClientNameLength = 2
	MaxClientNameLength = 100
	MinPhoneDigits      = 10
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-+()]+$`)
)

// ValidateClient validates proposed client fields and returns their normalized
// form: trimmed name, trimmed lower-case email, digits-only phone.
//
// Fields are checked in order name, email, phone; the first failure is returned.
func ValidateClient(f domain.ClientFields) (domain.ClientFields, error) {
	name, err := validateClientName(f.Name)
	if err != nil {
		return domain.ClientFields{}, err
	}
	email, err := validateEmail(f.Email)
	if err != nil {
		return domain.ClientFields{}, err
	}
	phone, err := validatePhone(f.Phone)
	if err != nil {
		return domain.ClientFields{}, err
	}
	return domain.ClientFields{Name: name, Email: email, Phone: phone}, nil
}

func validateClientName(raw string) (string, error) {
	if raw == "" {
		return "", clientError("name", "name is required")
	}
	trimmed := strings.TrimSpace(raw)
	if utf8.RuneCountInString(trimmed) < MinClientNameLength {
		return "", clientError("name", fmt.Sprintf("name must be at least %d characters", MinClientNameLength))
	}
	if utf8.RuneCountInString(raw) > MaxClientNameLength {
		return "", clientError("name", fmt.Sprintf("name must be at most %d characters", MaxClientNameLength))
	}
	return trimmed, nil
}

func validateEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", clientError("email", "email is required")
	}
	if !emailPattern.MatchString(trimmed) {
		return "", clientError("email", "email format is invalid")
	}
	return strings.ToLower(trimmed), nil
}

func validatePhone(raw string) (string, error) {
	if raw == "" {
		return "", clientError("phone", "phone is required")
	}
	if !phonePattern.MatchString(raw) {
		return "", clientError("phone", "phone may only contain digits, spaces, hyphens, parentheses and plus")
	}
	digits := DigitsOnly(raw)
	if len(digits) < MinPhoneDigits {
		return "", clientError("phone", fmt.Sprintf("phone must contain at least %d digits", MinPhoneDigits))
	}
	return digits, nil
}

// DigitsOnly strips every character that is not an ASCII digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func clientError(field, message string) error {
	return domain.NewValidationError(domain.EntityClient, field, message)
}
