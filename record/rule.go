package record

import (
	"fmt"

	"dxf/dwire"
)

// HandlerFunc consumes a tag that needs more than a field assignment, such
// as the tag that opens a nested sub-record. A returned error aborts the
// decode.
type HandlerFunc func(tag dwire.Tag, d *Decoder) error

// Rule routes one group code to a field.
type Rule struct {
	code    int
	target  interface{}
	handler HandlerFunc
	since   dwire.Version
	until   dwire.Version
	nth     int
	limit   int
	ranged  bool
	min     int
	max     int
	markers map[string]bool
	ignore  bool
}

// Bind routes code to target, which must be a pointer accepted by
// dwire.DecodeField.
func Bind(code int, target interface{}) *Rule {
	return &Rule{
		code:   code,
		target: target,
	}
}

// Func routes code to a handler.
func Func(code int, h HandlerFunc) *Rule {
	return &Rule{
		code:    code,
		handler: h,
	}
}

// Markers accepts subclass markers (code 100) from modern versions. Values
// not in names are reported and otherwise ignored.
func Markers(names ...string) *Rule {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return &Rule{
		code:    100,
		markers: m,
		since:   dwire.R13,
	}
}

// Ignore consumes code without a diagnostic.
func Ignore(code int) *Rule {
	return &Rule{
		code:   code,
		ignore: true,
	}
}

// Since limits the rule to version v and later.
func (r *Rule) Since(v dwire.Version) *Rule {
	r.since = v
	return r
}

// Until limits the rule to version v and earlier.
func (r *Rule) Until(v dwire.Version) *Rule {
	r.until = v
	return r
}

// Nth limits the rule to the n-th occurrence (1-based) of its code within
// one record.
func (r *Rule) Nth(n int) *Rule {
	r.nth = n
	return r
}

// Limit caps the number of values a slice target accepts.
func (r *Rule) Limit(n int) *Rule {
	r.limit = n
	return r
}

// Range reports decoded integers outside [min, max]. The value is kept.
func (r *Rule) Range(min, max int) *Rule {
	r.ranged = true
	r.min = min
	r.max = max
	return r
}

func (r *Rule) live(v dwire.Version) bool {
	if r.since != 0 && v < r.since {
		return false
	}
	if r.until != 0 && v > r.until {
		return false
	}
	return true
}

func (r *Rule) apply(tag dwire.Tag, d *Decoder) error {
	switch {
	case r.ignore:
		return nil
	case r.handler != nil:
		return r.handler(tag, d)
	case r.markers != nil:
		if !r.markers[tag.Value] {
			d.Warnf(tag.Code, "unknown subclass marker %q", tag.Value)
		}
		return nil
	}

	if r.limit > 0 && sliceLen(r.target) >= r.limit {
		d.Warnf(tag.Code, "more than %d values, truncated", r.limit)
		return nil
	}
	if err := dwire.DecodeField(tag.Value, r.target); err != nil {
		d.Warnf(tag.Code, "malformed value: %v", err)
		return nil
	}
	if r.ranged {
		if v, ok := intValue(r.target); ok && (v < r.min || v > r.max) {
			d.Warnf(tag.Code, "value %d out of range [%d, %d]", v, r.min, r.max)
		}
	}
	return nil
}

func (r *Rule) String() string {
	return fmt.Sprintf("rule(%d)", r.code)
}

func sliceLen(target interface{}) int {
	switch t := target.(type) {
	case *[]string:
		return len(*t)
	case *[]float64:
		return len(*t)
	case *[]dwire.Handle:
		return len(*t)
	}
	return 0
}

func intValue(target interface{}) (int, bool) {
	switch t := target.(type) {
	case *int:
		return *t, true
	case *int16:
		return int(*t), true
	case *int32:
		return int(*t), true
	case interface{ Int() int }:
		return t.Int(), true
	}
	return 0, false
}
