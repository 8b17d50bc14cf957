package entity

import (
	"dxf/chain"
	"dxf/dwire"
	"dxf/record"
)

// Line is a LINE entity.
type Line struct {
	Common

	Start Vector
	End   Vector

	Next *Line

	released bool
}

var _ Record = (*Line)(nil)

var Lines = &chain.Manager{
	Kind: "LINE",
	New: func() chain.Node {
		return new(Line)
	},
	Defaults: func(n chain.Node) {
		n.(*Line).init()
	},
}

func NewLine() *Line {
	return Lines.Init(nil).(*Line)
}

func InitLine(l *Line) *Line {
	if l == nil {
		return NewLine()
	}
	return Lines.Init(l).(*Line)
}

func (l *Line) init() {
	*l = Line{}
	l.Common.init()
}

func (l *Line) Type() string {
	return "LINE"
}

func (l *Line) Successor() chain.Node {
	if l.Next == nil {
		return nil
	}
	return l.Next
}

func (l *Line) Detach() {
	l.Next = nil
}

func (l *Line) Release() {
	l.released = true
}

func (l *Line) Released() bool {
	return l.released
}

func (l *Line) table(ver dwire.Version) *record.Table {
	t := record.NewTable(ver, l.Common.rules()...)
	t.Add(l.Start.bind(10)...)
	t.Add(l.End.bind(11)...)
	t.Add(
		record.Bind(92, &l.GraphicsDataSize),
		record.Markers("AcDbEntity", "AcDbLine"),
	)
	return t
}

// DecodeLine decodes a LINE whose announcement has been consumed.
func DecodeLine(r dwire.TagReader, existing *Line) (*Line, record.Diagnostics, error) {
	dec := record.NewDecoder(r, "LINE")
	l, err := decodeLine(dec, existing)
	return l, dec.Diagnostics(), err
}

func decodeLine(dec *record.Decoder, existing *Line) (*Line, error) {
	if existing != nil && existing.released {
		return nil, dec.Fail(record.ErrReleased)
	}
	dec.SetRecord("LINE")

	scratch := new(Line)
	scratch.init()
	if err := dec.Loop(scratch.table(dec.Version())); err != nil {
		return nil, err
	}
	scratch.finish()
	if scratch.Start == scratch.End {
		dec.Warnf(10, "start point equals end point")
	}

	if existing == nil {
		existing = Lines.Allocate().(*Line)
	}
	scratch.Next = existing.Next
	*existing = *scratch
	return existing, nil
}

func (l *Line) check() error {
	if l.released {
		return record.ErrReleased
	}
	if l.Start == l.End {
		return &record.RangeError{
			Record: "LINE",
			Field:  "End",
			Code:   11,
			Value:  l.End,
			Reason: "must differ from the start point",
		}
	}
	return l.Common.check("LINE")
}

func (l *Line) Encode(w dwire.TagWriter) (record.Diagnostics, error) {
	e := record.NewEncoder(w)
	if l == nil {
		e.Fail(record.ErrNilRecord)
		return e.Flush()
	}
	if err := l.check(); err != nil {
		e.Fail(err)
		return e.Flush()
	}

	e.SetRecord("LINE")
	l.Common.repair(e)
	e.Begin("LINE")
	l.Common.encodeHead(e)
	l.Common.encodeGraphics(e, false)
	e.Marker("AcDbLine")
	e.FieldUnless(39, l.Thickness, 0.0)
	e.Point(10, l.Start.X, l.Start.Y, l.Start.Z)
	e.Point(11, l.End.X, l.End.Y, l.End.Z)
	e.Extrusion(l.Extrusion.X, l.Extrusion.Y, l.Extrusion.Z)
	return e.Flush()
}

func (l *Line) Equals(other Record) bool {
	cast, ok := other.(*Line)
	if !ok || l == nil || cast == nil {
		return false
	}
	return l.Common.equals(&cast.Common) &&
		l.Start == cast.Start &&
		l.End == cast.End
}

func FreeLine(l *Line) error {
	if l == nil {
		return chain.ErrNilNode
	}
	return Lines.FreeOne(l)
}

func FreeLineChain(head *Line) (int, error) {
	if head == nil {
		return 0, nil
	}
	return Lines.FreeChain(head)
}
