// Package validate enforces format constraints on submitted post content,
// before any other governance stage runs.
//
// Validation is fail-closed: any error here rejects the submission outright,
// and the caller should map it to a client error, not a server fault.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Default maximum post length, in characters, when no limit is configured.
const DefaultMaxLength = 2000

type ErrorKind string

const (
	KindMissingContent ErrorKind = "missing_content"
	KindEmpty          ErrorKind = "empty"
	KindTooLong        ErrorKind = "too_long"
)

// ValidationError is a user-correctable rejection of submitted content.
//
// CurrentLength and MaxLength are only meaningful for KindTooLong.
type ValidationError struct {
	Kind          ErrorKind
	Message       string
	CurrentLength int
	MaxLength     int
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Content checks that submitted content is present, non-empty after trimming,
// and within maxLength characters. A nil content pointer means the field was
// absent from the request (or was not a string).
//
// Lengths are counted in unicode characters, not bytes.
//
// Pure function; no side effects.
func Content(content *string, maxLength int) error {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if content == nil {
		return &ValidationError{
			Kind:    KindMissingContent,
			Message: "content is required",
		}
	}
	// whitespace-only content is always "empty", even when the raw text would
	// also exceed the length limit
	if len(strings.TrimSpace(*content)) == 0 {
		return &ValidationError{
			Kind:    KindEmpty,
			Message: "content must not be empty",
		}
	}
	if length := utf8.RuneCountInString(*content); length > maxLength {
		return &ValidationError{
			Kind:          KindTooLong,
			Message:       fmt.Sprintf("content exceeds maximum length (%d > %d)", length, maxLength),
			CurrentLength: length,
			MaxLength:     maxLength,
		}
	}
	return nil
}
