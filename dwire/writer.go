package dwire

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultPrecision matches the six decimals of "%f".
	DefaultPrecision = 6
	// ShortestPrecision writes floats with the fewest digits that round-trip.
	ShortestPrecision = -1
)

type WriterOptions struct {
	Version Version
	// Precision is the number of decimals used for floats. Zero selects
	// DefaultPrecision; ShortestPrecision selects the shortest form.
	Precision int
	// Flatland enables the R11 elevation group (38) on 2D entities.
	Flatland bool
}

func (o WriterOptions) FloatPrecision() int {
	if o.Precision == 0 {
		return DefaultPrecision
	}
	return o.Precision
}

// Writer writes tags to an io.Writer. Like Reader it is owned by a single
// encode session.
type Writer struct {
	bw    *bufio.Writer
	name  string
	opts  WriterOptions
	lines int
	err   error
}

var _ TagWriter = (*Writer)(nil)

func NewWriter(w io.Writer, opts WriterOptions) *Writer {
	return NewNamedWriter(w, opts, "")
}

func NewNamedWriter(w io.Writer, opts WriterOptions, name string) *Writer {
	return &Writer{
		bw:   bufio.NewWriter(w),
		name: name,
		opts: opts,
	}
}

func (w *Writer) WriteTag(t Tag) error {
	if w.err != nil {
		return w.err
	}
	if strings.ContainsAny(t.Value, "\r\n") {
		return w.fail(errors.Errorf("value for code %d contains a line break", t.Code))
	}
	if _, err := fmt.Fprintf(w.bw, "%3d\n%s\n", t.Code, t.Value); err != nil {
		return w.fail(err)
	}
	w.lines += 2
	return nil
}

// WriteComment writes a 999 comment tag.
func (w *Writer) WriteComment(text string) error {
	return w.WriteTag(Tag{Code: 999, Value: text})
}

func (w *Writer) Options() WriterOptions {
	return w.opts
}

// LineNumber returns the number of lines written so far.
func (w *Writer) LineNumber() int {
	return w.lines
}

func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.bw.Flush(); err != nil {
		return w.fail(err)
	}
	return nil
}

func (w *Writer) fail(err error) error {
	w.err = &StreamError{
		Name: w.name,
		Line: w.lines,
		Err:  err,
	}
	return w.err
}
