package registry

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrNoInfo      = errors.New("message type has no info provider")
	ErrNotObject   = errors.New("message must be a JSON object")
)

// ParseError reports slot input that is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "invalid JSON: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConversionError reports well-formed JSON whose fields cannot be converted into a message.
type ConversionError struct {
	// Field is the gjson path of the offending field, empty when the whole payload is at fault.
	Field  string
	Reason string
}

func (e *ConversionError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
