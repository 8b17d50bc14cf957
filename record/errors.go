package record

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// MaxParams is the format limit on repeated values in one record.
const MaxParams = 10000

var (
	ErrReleased  = errors.New("record has been released")
	ErrNilRecord = errors.New("nil record")
)

// DecodeError is returned when a record could not be decoded. The target
// record is left untouched.
type DecodeError struct {
	Record string
	Name   string
	Line   int
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "error decoding " + e.Record
	if e.Name != "" {
		msg += " in " + e.Name
	}
	if e.Line > 0 {
		msg += " at line " + strconv.Itoa(e.Line)
	}
	return msg + ": " + e.Err.Error()
}

func (e *DecodeError) Cause() error {
	return e.Err
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// RangeError reports a field value that may not be written or set.
type RangeError struct {
	Record string
	Field  string
	Code   int
	Value  interface{}
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %s (code %d) = %v: %s", e.Record, e.Field, e.Code, e.Value, e.Reason)
}

// IsRangeError reports whether err is, or wraps, a *RangeError.
func IsRangeError(err error) bool {
	var re *RangeError
	return errors.As(err, &re)
}

// CheckRange fails with a *RangeError unless min <= v <= max.
func CheckRange(rec, field string, code int, v, min, max int) error {
	if v < min || v > max {
		return &RangeError{
			Record: rec,
			Field:  field,
			Code:   code,
			Value:  v,
			Reason: fmt.Sprintf("must be in [%d, %d]", min, max),
		}
	}
	return nil
}

// CheckPinned fails with a *RangeError unless v equals want.
func CheckPinned(rec, field string, code int, v, want interface{}) error {
	if v != want {
		return &RangeError{
			Record: rec,
			Field:  field,
			Code:   code,
			Value:  v,
			Reason: fmt.Sprintf("must be %v", want),
		}
	}
	return nil
}

// CheckLimit fails with a *RangeError when n repeated values exceed limit.
func CheckLimit(rec, field string, code int, n, limit int) error {
	if n > limit {
		return &RangeError{
			Record: rec,
			Field:  field,
			Code:   code,
			Value:  n,
			Reason: fmt.Sprintf("more than %d values", limit),
		}
	}
	return nil
}
