package record

import (
	"dxf/dwire"
)

// Table is the dispatch table of one record instance. It holds the
// occurrence counters used by Nth rules, so it must not be shared between
// records.
type Table struct {
	version dwire.Version
	rules   map[int][]*Rule
	counts  map[int]int
}

// NewTable indexes the rules that apply to version v.
func NewTable(v dwire.Version, rules ...*Rule) *Table {
	t := &Table{
		version: v,
		rules:   make(map[int][]*Rule),
		counts:  make(map[int]int),
	}
	t.Add(rules...)
	return t
}

// Add appends rules, again dropping the ones that do not apply.
func (t *Table) Add(rules ...*Rule) {
	for _, r := range rules {
		if !r.live(t.version) {
			continue
		}
		t.rules[r.code] = append(t.rules[r.code], r)
	}
}

// Handles reports whether any rule for code applies to the table's version.
func (t *Table) Handles(code int) bool {
	return len(t.rules[code]) > 0
}

// Occurrences returns how many tags with code have been dispatched.
func (t *Table) Occurrences(code int) int {
	return t.counts[code]
}

// Dispatch routes tag to its rule. It returns false when no rule exists for
// the code.
func (t *Table) Dispatch(tag dwire.Tag, d *Decoder) (bool, error) {
	rules := t.rules[tag.Code]
	if len(rules) == 0 {
		return false, nil
	}
	t.counts[tag.Code]++
	n := t.counts[tag.Code]
	for _, r := range rules {
		if r.nth == 0 || r.nth == n {
			return true, r.apply(tag, d)
		}
	}
	d.Warnf(tag.Code, "unexpected occurrence %d of group code, value %q discarded", n, tag.Value)
	return true, nil
}
