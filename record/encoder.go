package record

import (
	"fmt"
	"strconv"
	"strings"

	"dxf/dwire"

	"github.com/pkg/errors"
)

// Encoder stages the tags of one record, including its nested sub-records,
// and writes them on Flush. After the first hard error every call is a
// no-op and Flush writes nothing.
type Encoder struct {
	w     dwire.TagWriter
	opts  dwire.WriterOptions
	rec   string
	tags  []dwire.Tag
	diags Diagnostics
	err   error
}

func NewEncoder(w dwire.TagWriter) *Encoder {
	return &Encoder{
		w:    w,
		opts: w.Options(),
	}
}

func (e *Encoder) Version() dwire.Version {
	return e.opts.Version
}

func (e *Encoder) Options() dwire.WriterOptions {
	return e.opts
}

// AtLeast reports whether the target version is v or later.
func (e *Encoder) AtLeast(v dwire.Version) bool {
	return e.opts.Version >= v
}

// AtMost reports whether the target version is v or earlier.
func (e *Encoder) AtMost(v dwire.Version) bool {
	return e.opts.Version <= v
}

func (e *Encoder) SetRecord(rec string) {
	e.rec = rec
}

func (e *Encoder) Record() string {
	return e.rec
}

// Begin stages the announcement "0 name" and names the record in
// diagnostics.
func (e *Encoder) Begin(name string) {
	e.rec = name
	e.stage(0, name)
}

// Field stages value under code.
func (e *Encoder) Field(code int, value interface{}) {
	if e.err != nil {
		return
	}
	raw, err := dwire.EncodeField(value, e.opts.FloatPrecision())
	if err != nil {
		e.Fail(errors.Wrapf(err, "code %d", code))
		return
	}
	e.stage(code, raw)
}

// FieldUnless stages value unless it equals def.
func (e *Encoder) FieldUnless(code int, value, def interface{}) {
	if value == def {
		return
	}
	e.Field(code, value)
}

// Handle stages h under code when it is assigned.
func (e *Encoder) Handle(code int, h dwire.Handle) {
	if h.Valid() {
		e.Field(code, h)
	}
}

// Text stages a string under code when it is not empty.
func (e *Encoder) Text(code int, s string) {
	if s != "" {
		e.stage(code, s)
	}
}

// Point stages a 3D point using code, code+10 and code+20.
func (e *Encoder) Point(code int, x, y, z float64) {
	e.Field(code, x)
	e.Field(code+10, y)
	e.Field(code+20, z)
}

// Extrusion stages the extrusion direction unless it is the unit Z axis.
// Versions before R12 have no extrusion group.
func (e *Encoder) Extrusion(x, y, z float64) {
	if !e.AtLeast(dwire.R12) || (x == 0 && y == 0 && z == 1) {
		return
	}
	e.Point(210, x, y, z)
}

// Marker stages a subclass marker on R13 and later.
func (e *Encoder) Marker(name string) {
	if e.AtLeast(dwire.R13) {
		e.stage(100, name)
	}
}

// Group stages an application group "102 {name" ... "102 }" holding one
// value under code. Nothing is staged for an empty value or before R14.
func (e *Encoder) Group(name string, code int, value string) {
	if value == "" || !e.AtLeast(dwire.R14) {
		return
	}
	e.stage(102, "{"+name)
	e.stage(code, value)
	e.stage(102, "}")
}

func (e *Encoder) Strings(code int, values []string) {
	for _, v := range values {
		e.stage(code, v)
	}
}

func (e *Encoder) Floats(code int, values []float64) {
	for _, v := range values {
		e.Field(code, v)
	}
}

func (e *Encoder) Handles(code int, values []dwire.Handle) {
	for _, v := range values {
		e.Field(code, v)
	}
}

// Count stages a declared element count and reports a mismatch with the
// number of elements actually staged.
func (e *Encoder) Count(code int, declared, actual int) {
	e.Field(code, declared)
	if declared != actual {
		e.Warnf(code, "declared count %d does not match %d values", declared, actual)
	}
}

// Comment stages a 999 comment.
func (e *Encoder) Comment(text string) {
	e.stage(999, text)
}

func (e *Encoder) Warnf(code int, format string, args ...interface{}) {
	diag := Diagnostic{
		Record:  e.rec,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
	logDiagnostic("encoder", diag)
	e.diags = append(e.diags, diag)
}

// Fail records a hard error. Only the first error is kept.
func (e *Encoder) Fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *Encoder) Err() error {
	return e.err
}

// Staged returns the tags staged so far.
func (e *Encoder) Staged() []dwire.Tag {
	return e.tags
}

// Flush writes the staged tags unless a hard error occurred. The staging
// buffer is reset either way.
func (e *Encoder) Flush() (Diagnostics, error) {
	diags := e.diags
	tags := e.tags
	e.tags = nil
	e.diags = nil
	if err := e.err; err != nil {
		e.err = nil
		return diags, err
	}
	for _, t := range tags {
		if err := e.w.WriteTag(t); err != nil {
			return diags, err
		}
	}
	return diags, nil
}

// stage appends one tag. Values may not span lines, so a line break fails
// the record before anything reaches the writer.
func (e *Encoder) stage(code int, raw string) {
	if e.err != nil {
		return
	}
	if strings.ContainsAny(raw, "\r\n") {
		e.Fail(&RangeError{
			Record: e.rec,
			Field:  "value",
			Code:   code,
			Value:  strconv.Quote(raw),
			Reason: "contains a line break",
		})
		return
	}
	e.tags = append(e.tags, dwire.Tag{Code: code, Value: raw})
}
