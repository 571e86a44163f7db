// ABOUTME: Input validation for inbound chat operations
// ABOUTME: Field limits mirror what clients are told they may send

package service

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Field limits, in characters.
const (
	maxRoomNameLen    = 100
	maxSharedTextLen  = 140
	maxAIRoomTextLen  = 500
	maxTitleLen       = 100
	maxDescriptionLen = 500
)

// ValidationError reports a rejected input field. It is returned before any
// side effect happens: nothing is broadcast or enqueued for invalid input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validateRoomName(room string) error {
	if strings.TrimSpace(room) == "" {
		return &ValidationError{Field: "room", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(room) > maxRoomNameLen {
		return &ValidationError{Field: "room", Reason: fmt.Sprintf("must be at most %d characters", maxRoomNameLen)}
	}
	return nil
}

func validateText(field, text string, maxLen int) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: field, Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(text) > maxLen {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d characters", maxLen)}
	}
	return nil
}

func validateTitle(title string) error {
	return validateText("title", title, maxTitleLen)
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("must be at most %d characters", maxDescriptionLen)}
	}
	return nil
}
