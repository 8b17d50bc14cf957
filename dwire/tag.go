package dwire

import (
	"fmt"
	"strconv"
)

// Tag is one group code / value pair.
type Tag struct {
	Code  int
	Value string
}

func (t Tag) String() string {
	return fmt.Sprintf("%d:%q", t.Code, t.Value)
}

// IsTerminator reports whether t ends the current record. The value of a
// terminator names the next record and belongs to the enclosing loop.
func (t Tag) IsTerminator() bool {
	return t.Code == 0
}

// TagReader is the read side of a tag stream.
type TagReader interface {
	// Next consumes and returns the next tag. It returns io.EOF at the end of
	// input and a *StreamError when the stream cannot be read. Once a
	// *StreamError is returned every later call returns it again.
	Next() (Tag, error)
	// Peek returns the next tag without consuming it.
	Peek() (Tag, error)
	// LineNumber returns the number of lines consumed so far.
	LineNumber() int
	// Version returns the declared format version of the stream.
	Version() Version
	// Name identifies the stream in diagnostics, usually a file name.
	Name() string
}

// TagWriter is the write side of a tag stream.
type TagWriter interface {
	WriteTag(t Tag) error
	Options() WriterOptions
}

// Handle is a hexadecimal entity identifier.
type Handle int64

// NoHandle marks an identifier that has not been assigned.
const NoHandle Handle = -1

func (h Handle) String() string {
	if h < 0 {
		return ""
	}
	return strconv.FormatInt(int64(h), 16)
}

func (h Handle) Valid() bool {
	return h >= 0
}

// ParseHandle parses a hexadecimal handle.
func ParseHandle(s string) (Handle, error) {
	var h Handle
	if err := DecodeField(s, &h); err != nil {
		return NoHandle, err
	}
	return h, nil
}
