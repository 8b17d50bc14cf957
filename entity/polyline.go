package entity

import (
	"io"

	"dxf/chain"
	"dxf/dwire"
	"dxf/record"

	"github.com/pkg/errors"
)

// Polyline flags (code 70).
const (
	PolylineClosed       int16 = 1
	PolylineCurveFit     int16 = 2
	PolylineSplineFit    int16 = 4
	Polyline3D           int16 = 8
	PolylinePolygonMesh  int16 = 16
	PolylineMeshClosedN  int16 = 32
	PolylinePolyfaceMesh int16 = 64
	PolylineContinuous   int16 = 128
)

// Polyline is a POLYLINE entity together with its vertices. On the wire the
// vertices follow the polyline as separate VERTEX records and the sequence
// is closed by a SEQEND record.
type Polyline struct {
	Common

	// Point is the polyline's anchor. Only Z, the elevation, may be non-zero.
	Point      Vector
	StartWidth float64
	EndWidth   float64
	// VerticesFollow must be 1.
	VerticesFollow int16
	Flag           int16
	MVertexCount   int16
	NVertexCount   int16
	MDensity       int16
	NDensity       int16
	SurfaceType    int16

	Vertices     *Vertex
	SeqendHandle dwire.Handle

	Next *Polyline

	released bool
}

var (
	_ Record      = (*Polyline)(nil)
	_ chain.Owner = (*Polyline)(nil)
)

// Polylines manages polyline allocation. Freeing a chain of polylines also
// frees their vertices.
var Polylines = &chain.Manager{
	Kind: "POLYLINE",
	New: func() chain.Node {
		return new(Polyline)
	},
	Defaults: func(n chain.Node) {
		n.(*Polyline).init()
	},
	Sub: Vertices,
}

func NewPolyline() *Polyline {
	return Polylines.Init(nil).(*Polyline)
}

// InitPolyline resets p to its defaults. A nil p is allocated.
func InitPolyline(p *Polyline) *Polyline {
	if p == nil {
		return NewPolyline()
	}
	return Polylines.Init(p).(*Polyline)
}

func (p *Polyline) init() {
	*p = Polyline{
		VerticesFollow: 1,
		SeqendHandle:   dwire.NoHandle,
	}
	p.Common.init()
}

func (p *Polyline) Type() string {
	return "POLYLINE"
}

func (p *Polyline) Successor() chain.Node {
	if p.Next == nil {
		return nil
	}
	return p.Next
}

func (p *Polyline) Detach() {
	p.Next = nil
}

func (p *Polyline) Release() {
	p.released = true
}

func (p *Polyline) Released() bool {
	return p.released
}

func (p *Polyline) Owned() chain.Node {
	if p.Vertices == nil {
		return nil
	}
	return p.Vertices
}

func (p *Polyline) Disown() {
	p.Vertices = nil
}

func (p *Polyline) subclass() string {
	switch {
	case p.Flag&PolylinePolygonMesh != 0:
		return "AcDbPolygonMesh"
	case p.Flag&PolylinePolyfaceMesh != 0:
		return "AcDbPolyFaceMesh"
	case p.Flag&Polyline3D != 0:
		return "AcDb3dPolyline"
	default:
		return "AcDb2dPolyline"
	}
}

func (p *Polyline) table(ver dwire.Version) *record.Table {
	t := record.NewTable(ver, p.Common.rules()...)
	t.Add(p.Point.bind(10)...)
	t.Add(
		record.Bind(40, &p.StartWidth),
		record.Bind(41, &p.EndWidth),
		record.Bind(66, &p.VerticesFollow).Range(1, 1),
		record.Bind(70, &p.Flag),
		record.Bind(71, &p.MVertexCount),
		record.Bind(72, &p.NVertexCount),
		record.Bind(73, &p.MDensity),
		record.Bind(74, &p.NDensity),
		record.Bind(75, &p.SurfaceType),
		record.Bind(92, &p.GraphicsDataSize),
		record.Markers(
			"AcDbEntity",
			"AcDb2dPolyline",
			"AcDb3dPolyline",
			"AcDbPolygonMesh",
			"AcDbPolyFaceMesh",
		),
	)
	return t
}

func (p *Polyline) seqendTable(ver dwire.Version) *record.Table {
	return record.NewTable(ver,
		record.Bind(5, &p.SeqendHandle),
		record.Ignore(6),
		record.Ignore(8),
		record.Ignore(62),
		record.Ignore(67),
		record.Ignore(102),
		record.Ignore(330),
		record.Ignore(360),
		record.Markers("AcDbEntity"),
	)
}

// DecodePolyline decodes a POLYLINE whose announcement has been consumed,
// followed by its VERTEX records and the closing SEQEND. The result is
// written to existing, or to a new polyline when existing is nil. On error
// nil is returned and existing is left untouched.
func DecodePolyline(r dwire.TagReader, existing *Polyline) (*Polyline, record.Diagnostics, error) {
	dec := record.NewDecoder(r, "POLYLINE")
	p, err := decodePolyline(dec, existing)
	return p, dec.Diagnostics(), err
}

func decodePolyline(dec *record.Decoder, existing *Polyline) (*Polyline, error) {
	if existing != nil {
		if existing.released {
			return nil, dec.Fail(record.ErrReleased)
		}
		if existing.Vertices != nil {
			return nil, dec.Fail(errors.Wrap(chain.ErrOwnsChain, "POLYLINE"))
		}
	}
	dec.SetRecord("POLYLINE")

	scratch := new(Polyline)
	scratch.init()
	if err := dec.Loop(scratch.table(dec.Version())); err != nil {
		return nil, err
	}
	scratch.finish()
	if scratch.Point.X != 0 {
		dec.Warnf(10, "polyline X must be 0, value %g kept", scratch.Point.X)
	}
	if scratch.Point.Y != 0 {
		dec.Warnf(20, "polyline Y must be 0, value %g kept", scratch.Point.Y)
	}

	if err := scratch.decodeVertices(dec); err != nil {
		if scratch.Vertices != nil {
			_, _ = Vertices.FreeChain(scratch.Vertices)
		}
		return nil, err
	}

	if existing == nil {
		existing = Polylines.Allocate().(*Polyline)
	}
	scratch.Next = existing.Next
	*existing = *scratch
	return existing, nil
}

func (p *Polyline) decodeVertices(dec *record.Decoder) error {
	var tail *Vertex
	for {
		tag, err := dec.Peek()
		if err == io.EOF {
			dec.Warnf(0, "missing SEQEND")
			return nil
		}
		if err != nil {
			return err
		}

		switch tag.Value {
		case "VERTEX":
			if _, err := dec.Next(); err != nil {
				return err
			}
			v, err := decodeVertex(dec, nil)
			if err != nil {
				return err
			}
			if tail == nil {
				p.Vertices = v
			} else {
				tail.Next = v
			}
			tail = v
		case "SEQEND":
			if _, err := dec.Next(); err != nil {
				return err
			}
			dec.SetRecord("SEQEND")
			return dec.Loop(p.seqendTable(dec.Version()))
		default:
			dec.SetRecord("POLYLINE")
			dec.Warnf(0, "missing SEQEND before %s", tag.Value)
			return nil
		}
	}
}

func (p *Polyline) check() error {
	if p.released {
		return record.ErrReleased
	}
	if err := record.CheckPinned("POLYLINE", "Point.X", 10, p.Point.X, 0.0); err != nil {
		return err
	}
	if err := record.CheckPinned("POLYLINE", "Point.Y", 20, p.Point.Y, 0.0); err != nil {
		return err
	}
	if err := record.CheckPinned("POLYLINE", "VerticesFollow", 66, p.VerticesFollow, int16(1)); err != nil {
		return err
	}
	if err := p.Common.check("POLYLINE"); err != nil {
		return err
	}
	for v := p.Vertices; v != nil; v = v.Next {
		if err := v.check(); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes the polyline, its vertices and the closing SEQEND. Nothing
// is written when a precondition fails.
func (p *Polyline) Encode(w dwire.TagWriter) (record.Diagnostics, error) {
	e := record.NewEncoder(w)
	p.encodeTo(e)
	return e.Flush()
}

func (p *Polyline) encodeTo(e *record.Encoder) {
	if p == nil {
		e.Fail(record.ErrNilRecord)
		return
	}
	if err := p.check(); err != nil {
		e.Fail(err)
		return
	}
	e.SetRecord("POLYLINE")
	p.Common.repair(e)
	for v := p.Vertices; v != nil; v = v.Next {
		e.SetRecord("VERTEX")
		v.Common.repair(e)
	}

	e.Begin("POLYLINE")
	p.Common.encodeHead(e)
	p.Common.encodeGraphics(e, false)
	e.Marker(p.subclass())
	e.Field(66, p.VerticesFollow)
	e.Point(10, p.Point.X, p.Point.Y, p.Point.Z)
	e.FieldUnless(39, p.Thickness, 0.0)
	e.Field(70, p.Flag)
	e.FieldUnless(40, p.StartWidth, 0.0)
	e.FieldUnless(41, p.EndWidth, 0.0)
	e.FieldUnless(71, p.MVertexCount, int16(0))
	e.FieldUnless(72, p.NVertexCount, int16(0))
	e.FieldUnless(73, p.MDensity, int16(0))
	e.FieldUnless(74, p.NDensity, int16(0))
	e.FieldUnless(75, p.SurfaceType, int16(0))
	e.Extrusion(p.Extrusion.X, p.Extrusion.Y, p.Extrusion.Z)

	for v := p.Vertices; v != nil; v = v.Next {
		v.encodeTo(e)
	}

	e.Begin("SEQEND")
	e.Handle(5, p.SeqendHandle)
	e.Marker("AcDbEntity")
	e.Field(8, p.Layer)
}

func (p *Polyline) Equals(other Record) bool {
	cast, ok := other.(*Polyline)
	if !ok || p == nil || cast == nil {
		return false
	}
	if !p.Common.equals(&cast.Common) ||
		p.Point != cast.Point ||
		p.StartWidth != cast.StartWidth ||
		p.EndWidth != cast.EndWidth ||
		p.VerticesFollow != cast.VerticesFollow ||
		p.Flag != cast.Flag ||
		p.MVertexCount != cast.MVertexCount ||
		p.NVertexCount != cast.NVertexCount ||
		p.MDensity != cast.MDensity ||
		p.NDensity != cast.NDensity ||
		p.SurfaceType != cast.SurfaceType ||
		p.SeqendHandle != cast.SeqendHandle {
		return false
	}

	a, b := p.Vertices, cast.Vertices
	for ; a != nil && b != nil; a, b = a.Next, b.Next {
		if !a.Equals(b) {
			return false
		}
	}
	return a == nil && b == nil
}

// SetPoint sets the anchor point. X and Y must be zero.
func (p *Polyline) SetPoint(pt Vector) error {
	if err := record.CheckPinned("POLYLINE", "Point.X", 10, pt.X, 0.0); err != nil {
		return err
	}
	if err := record.CheckPinned("POLYLINE", "Point.Y", 20, pt.Y, 0.0); err != nil {
		return err
	}
	p.Point = pt
	return nil
}

func (p *Polyline) SetVerticesFollow(v int16) error {
	if err := record.CheckPinned("POLYLINE", "VerticesFollow", 66, v, int16(1)); err != nil {
		return err
	}
	p.VerticesFollow = v
	return nil
}

// AppendVertex links v, and any vertices following it, to the end of the
// vertex chain.
func (p *Polyline) AppendVertex(v *Vertex) error {
	if v == nil {
		return chain.ErrNilNode
	}
	if v.released || p.released {
		return record.ErrReleased
	}
	if p.Vertices == nil {
		p.Vertices = v
		return nil
	}
	tail := p.Vertices
	for tail.Next != nil {
		tail = tail.Next
	}
	tail.Next = v
	return nil
}

// VertexCount returns the length of the vertex chain.
func (p *Polyline) VertexCount() int {
	if p.Vertices == nil {
		return 0
	}
	return chain.Len(p.Vertices)
}

// FreeVertices releases the vertex chain and clears it.
func (p *Polyline) FreeVertices() (int, error) {
	n, err := FreeVertexChain(p.Vertices)
	if err != nil {
		return n, err
	}
	p.Vertices = nil
	return n, nil
}

// FreePolyline releases a single polyline. It fails when p is still linked
// to a successor or still owns vertices.
func FreePolyline(p *Polyline) error {
	if p == nil {
		return chain.ErrNilNode
	}
	return Polylines.FreeOne(p)
}

// FreePolylineChain releases every polyline from head to tail together
// with their vertices, and returns the number of polylines released.
func FreePolylineChain(head *Polyline) (int, error) {
	if head == nil {
		return 0, nil
	}
	return Polylines.FreeChain(head)
}
