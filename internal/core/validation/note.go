package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/artpar/notekeeper/internal/core/domain"
)

// =============================================================================
// Note Validation
// =============================================================================

const (
	MaxNoteTitleLength   = 200
	MaxNoteContentLength = 5000
)

// ValidateNote validates proposed note fields and returns them trimmed.
// Whether the referenced client exists is not checked here.
func ValidateNote(f domain.NoteFields) (domain.NoteFields, error) {
	title, err := validateText("title", f.Title, MaxNoteTitleLength)
	if err != nil {
		return domain.NoteFields{}, err
	}
	content, err := validateText("content", f.Content, MaxNoteContentLength)
	if err != nil {
		return domain.NoteFields{}, err
	}
	clientID := strings.TrimSpace(f.ClientID)
	if clientID == "" {
		return domain.NoteFields{}, noteError("client_id", "client reference is required")
	}
	return domain.NoteFields{Title: title, Content: content, ClientID: clientID}, nil
}

func validateText(field, raw string, max int) (string, error) {
	if raw == "" {
		return "", noteError(field, field+" is required")
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", noteError(field, field+" cannot be blank")
	}
	if utf8.RuneCountInString(raw) > max {
		return "", noteError(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return trimmed, nil
}

func noteError(field, message string) error {
	return domain.NewValidationError(domain.EntityNote, field, message)
}
