package record

import (
	"fmt"
	"io"

	"dxf/dwire"
	"dxf/log"

	"github.com/pkg/errors"
)

// Decoder drives the tag loop of one record and collects its diagnostics.
// Nested sub-records are decoded with the same Decoder so diagnostics stay
// in stream order.
type Decoder struct {
	r        dwire.TagReader
	rec      string
	active   *Table
	diags    Diagnostics
	comments []string
	lgr      log.Logger
}

func NewDecoder(r dwire.TagReader, rec string) *Decoder {
	return &Decoder{
		r:   r,
		rec: rec,
		lgr: log.WithModule("record-decoder"),
	}
}

func (d *Decoder) Version() dwire.Version {
	return d.r.Version()
}

func (d *Decoder) Reader() dwire.TagReader {
	return d.r
}

// Record returns the name of the record currently being decoded.
func (d *Decoder) Record() string {
	return d.rec
}

// SetRecord changes the record name used in diagnostics.
func (d *Decoder) SetRecord(rec string) {
	d.rec = rec
}

// Switch makes t the active table for the rest of the loop. Handlers use it
// to start a nested sub-record.
func (d *Decoder) Switch(t *Table) {
	d.active = t
}

// Loop dispatches tags to t until the next terminator, which is left
// unread, or the end of input.
func (d *Decoder) Loop(t *Table) error {
	d.active = t
	for {
		tag, err := d.r.Peek()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return d.Fail(err)
		}
		if tag.IsTerminator() {
			return nil
		}
		if _, err := d.r.Next(); err != nil {
			return d.Fail(err)
		}

		if tag.Code == 999 {
			d.comments = append(d.comments, tag.Value)
			d.lgr.Debug("comment", "record", d.rec, "line", d.r.LineNumber(), "text", tag.Value)
			continue
		}

		ok, err := d.active.Dispatch(tag, d)
		if err != nil {
			return d.Fail(err)
		}
		if !ok {
			d.Warnf(tag.Code, "unknown group code, value %q discarded", tag.Value)
		}
	}
}

// Peek returns the next tag without consuming it. io.EOF is returned as is.
func (d *Decoder) Peek() (dwire.Tag, error) {
	tag, err := d.r.Peek()
	if err != nil && err != io.EOF {
		return tag, d.Fail(err)
	}
	return tag, err
}

// Next consumes the next tag. io.EOF is returned as is.
func (d *Decoder) Next() (dwire.Tag, error) {
	tag, err := d.r.Next()
	if err != nil && err != io.EOF {
		return tag, d.Fail(err)
	}
	return tag, err
}

// Expect consumes the announcement "0 name" of a nested record.
func (d *Decoder) Expect(name string) error {
	tag, err := d.Next()
	if err == io.EOF {
		return d.Fail(errors.Wrapf(io.ErrUnexpectedEOF, "expected %s", name))
	}
	if err != nil {
		return err
	}
	if !tag.IsTerminator() || tag.Value != name {
		return d.Fail(errors.Errorf("expected %s, got %s", name, tag))
	}
	return nil
}

// Warnf records a diagnostic for the tag just read.
func (d *Decoder) Warnf(code int, format string, args ...interface{}) {
	diag := Diagnostic{
		Record:  d.rec,
		Line:    d.r.LineNumber(),
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
	if name := d.r.Name(); name != "" {
		logDiagnostic(name, diag)
	} else {
		logDiagnostic("stream", diag)
	}
	d.diags = append(d.diags, diag)
}

// Fail wraps err in a *DecodeError. An error that already is one is
// returned unchanged.
func (d *Decoder) Fail(err error) error {
	if de, ok := err.(*DecodeError); ok {
		return de
	}
	return &DecodeError{
		Record: d.rec,
		Name:   d.r.Name(),
		Line:   d.r.LineNumber(),
		Err:    err,
	}
}

func (d *Decoder) Diagnostics() Diagnostics {
	return d.diags
}

// Comments returns the 999 comments seen so far.
func (d *Decoder) Comments() []string {
	return d.comments
}
