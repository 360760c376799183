package user

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError reports input that is not syntactically valid JSON.
type ParseError struct {
	Offset int64 // byte offset of the syntax error, if known
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON at offset %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports a record that does not satisfy the #User schema,
// or, with Document set, a document that is not an object of users.
// User may legitimately be the empty name.
type ValidationError struct {
	User     string
	Document bool
	Messages []string
}

func (e *ValidationError) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if e.Document {
		return fmt.Sprintf("invalid users document: %s", msg)
	}
	return fmt.Sprintf("invalid user %q: %s", e.User, msg)
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
