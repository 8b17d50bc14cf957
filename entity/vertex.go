package entity

import (
	"dxf/chain"
	"dxf/dwire"
	"dxf/record"
)

// Vertex flags (code 70).
const (
	VertexCurveFitExtra     int16 = 1
	VertexCurveFitTangent   int16 = 2
	VertexSplineFit         int16 = 8
	VertexSplineFrame       int16 = 16
	Vertex3DPolyline        int16 = 32
	Vertex3DMesh            int16 = 64
	VertexPolyfaceMesh      int16 = 128
	vertexPolyfaceMeshPoint       = Vertex3DMesh | VertexPolyfaceMesh
)

// Vertex is one element of the vertex chain owned by a Polyline.
type Vertex struct {
	Common

	Point            Vector
	StartWidth       float64
	EndWidth         float64
	Bulge            float64
	Flag             int16
	TangentDirection float64
	// Indices are the polyface mesh vertex indices (codes 71 to 74).
	Indices [4]int16
	ID      int

	Next *Vertex

	released bool
}

var _ chain.Node = (*Vertex)(nil)

// Vertices manages vertex allocation.
var Vertices = &chain.Manager{
	Kind: "VERTEX",
	New: func() chain.Node {
		return new(Vertex)
	},
	Defaults: func(n chain.Node) {
		n.(*Vertex).init()
	},
}

func NewVertex() *Vertex {
	return Vertices.Init(nil).(*Vertex)
}

// InitVertex resets v to its defaults. A nil v is allocated.
func InitVertex(v *Vertex) *Vertex {
	if v == nil {
		return NewVertex()
	}
	return Vertices.Init(v).(*Vertex)
}

func (v *Vertex) init() {
	*v = Vertex{}
	v.Common.init()
}

func (v *Vertex) Successor() chain.Node {
	if v.Next == nil {
		return nil
	}
	return v.Next
}

func (v *Vertex) Detach() {
	v.Next = nil
}

func (v *Vertex) Release() {
	v.released = true
}

func (v *Vertex) Released() bool {
	return v.released
}

func (v *Vertex) Type() string {
	return "VERTEX"
}

func (v *Vertex) subclass() string {
	switch {
	case v.Flag&vertexPolyfaceMeshPoint == vertexPolyfaceMeshPoint:
		return "AcDbPolyFaceMeshVertex"
	case v.Flag&VertexPolyfaceMesh != 0:
		return "AcDbFaceRecord"
	case v.Flag&Vertex3DMesh != 0:
		return "AcDbPolygonMeshVertex"
	case v.Flag&Vertex3DPolyline != 0:
		return "AcDb3dPolylineVertex"
	default:
		return "AcDb2dVertex"
	}
}

func (v *Vertex) table(ver dwire.Version) *record.Table {
	t := record.NewTable(ver, v.Common.rules()...)
	t.Add(v.Point.bind(10)...)
	t.Add(
		record.Bind(40, &v.StartWidth),
		record.Bind(41, &v.EndWidth),
		record.Bind(42, &v.Bulge),
		record.Bind(50, &v.TangentDirection),
		record.Bind(70, &v.Flag),
		record.Bind(71, &v.Indices[0]),
		record.Bind(72, &v.Indices[1]),
		record.Bind(73, &v.Indices[2]),
		record.Bind(74, &v.Indices[3]),
		record.Bind(91, &v.ID).Since(dwire.R2010),
		record.Bind(92, &v.GraphicsDataSize),
		record.Markers(
			"AcDbEntity",
			"AcDbVertex",
			"AcDb2dVertex",
			"AcDb3dPolylineVertex",
			"AcDbPolygonMeshVertex",
			"AcDbPolyFaceMeshVertex",
			"AcDbFaceRecord",
		),
	)
	return t
}

// DecodeVertex decodes a VERTEX whose announcement has been consumed. The
// result is written to existing, or to a new vertex when existing is nil.
// On error existing is left untouched.
func DecodeVertex(r dwire.TagReader, existing *Vertex) (*Vertex, record.Diagnostics, error) {
	dec := record.NewDecoder(r, "VERTEX")
	v, err := decodeVertex(dec, existing)
	return v, dec.Diagnostics(), err
}

func decodeVertex(dec *record.Decoder, existing *Vertex) (*Vertex, error) {
	if existing != nil && existing.released {
		return nil, dec.Fail(record.ErrReleased)
	}
	dec.SetRecord("VERTEX")

	scratch := new(Vertex)
	scratch.init()
	if err := dec.Loop(scratch.table(dec.Version())); err != nil {
		return nil, err
	}
	scratch.finish()

	if existing == nil {
		existing = Vertices.Allocate().(*Vertex)
	}
	scratch.Next = existing.Next
	*existing = *scratch
	return existing, nil
}

func (v *Vertex) check() error {
	if v.released {
		return record.ErrReleased
	}
	return v.Common.check("VERTEX")
}

// Encode writes the vertex on its own, without the enclosing polyline.
func (v *Vertex) Encode(w dwire.TagWriter) (record.Diagnostics, error) {
	e := record.NewEncoder(w)
	if v == nil {
		e.Fail(record.ErrNilRecord)
	} else if err := v.check(); err != nil {
		e.Fail(err)
	} else {
		v.Common.repair(e)
		v.encodeTo(e)
	}
	return e.Flush()
}

// encodeTo stages the vertex. Preconditions must have been checked.
func (v *Vertex) encodeTo(e *record.Encoder) {
	e.Begin("VERTEX")
	v.Common.encodeHead(e)
	v.Common.encodeGraphics(e, false)
	// a face record carries only its own marker
	sub := v.subclass()
	if sub != "AcDbFaceRecord" {
		e.Marker("AcDbVertex")
	}
	e.Marker(sub)
	e.Point(10, v.Point.X, v.Point.Y, v.Point.Z)
	e.FieldUnless(39, v.Thickness, 0.0)
	e.FieldUnless(40, v.StartWidth, 0.0)
	e.FieldUnless(41, v.EndWidth, 0.0)
	e.FieldUnless(42, v.Bulge, 0.0)
	e.Field(70, v.Flag)
	e.FieldUnless(50, v.TangentDirection, 0.0)
	for i, idx := range v.Indices {
		e.FieldUnless(71+i, idx, int16(0))
	}
	if e.AtLeast(dwire.R2010) {
		e.FieldUnless(91, v.ID, 0)
	}
	e.Extrusion(v.Extrusion.X, v.Extrusion.Y, v.Extrusion.Z)
}

func (v *Vertex) Equals(other *Vertex) bool {
	if v == nil || other == nil {
		return v == other
	}
	return v.Common.equals(&other.Common) &&
		v.Point == other.Point &&
		v.StartWidth == other.StartWidth &&
		v.EndWidth == other.EndWidth &&
		v.Bulge == other.Bulge &&
		v.Flag == other.Flag &&
		v.TangentDirection == other.TangentDirection &&
		v.Indices == other.Indices &&
		v.ID == other.ID
}

// FreeVertex releases a single vertex. It fails when v is still linked to
// a successor.
func FreeVertex(v *Vertex) error {
	if v == nil {
		return chain.ErrNilNode
	}
	return Vertices.FreeOne(v)
}

// FreeVertexChain releases every vertex from head to tail and returns the
// number released.
func FreeVertexChain(head *Vertex) (int, error) {
	if head == nil {
		return 0, nil
	}
	return Vertices.FreeChain(head)
}
