package dwire

import (
	"strconv"

	"github.com/pkg/errors"
)

var (
	ErrLineTooLong  = errors.New("line exceeds maximum length")
	ErrBadGroupCode = errors.New("group code is not an integer")
	ErrMissingValue = errors.New("group code without value")
)

// StreamError indicates that the underlying tag stream could not be read or
// written. It is fatal for the record being processed.
type StreamError struct {
	Name string
	Line int
	Err  error
}

func (e *StreamError) Error() string {
	msg := "dxf stream error"
	if e.Name != "" {
		msg += " in " + e.Name
	}
	if e.Line > 0 {
		msg += " at line " + strconv.Itoa(e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StreamError) Cause() error {
	return e.Err
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// IsStreamError reports whether err, or any error it wraps, is a
// *StreamError.
func IsStreamError(err error) bool {
	var se *StreamError
	return errors.As(err, &se)
}
