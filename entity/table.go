package entity

import (
	"dxf/chain"
	"dxf/config"
	"dxf/dwire"
	"dxf/record"

	"github.com/pkg/errors"
)

// Table is an ACAD_TABLE entity. Its cells follow the table-level fields
// on the wire, each one opened by code 171.
//
// Codes 92 and 280 occur twice with different meanings: the first 92 is the
// proxy graphics size and the second the column count, the first 280 the
// table data version and the second the suppress-title flag.
type Table struct {
	Common

	BlockName         string
	InsertionPoint    Vector
	Direction         Vector
	TableDataVersion  int16
	SuppressTitle     int16
	SuppressHeaderRow int16
	TableStyle        string
	OwningBlock       string

	ValueFlag                int
	Rows                     int
	Columns                  int
	OverrideFlag             int
	BorderColorOverride      int
	BorderLineweightOverride int
	BorderVisibilityOverride int
	RowHeights               []float64
	ColumnWidths             []float64

	FlowDirection               int16
	HorizontalMargin            float64
	VerticalMargin              float64
	TextStyle                   string
	TextHeight                  float64
	Alignment                   int16
	BackgroundColor             int16
	ContentColor                int16
	HorizontalInsideBorderColor int16
	BottomBorderColor           int16
	VerticalInsideBorderColor   int16
	RightBorderColor            int16
	BorderLineweight            int16
	FillOverride                int16

	Cells *TableCell

	Next *Table

	released bool
}

var (
	_ Record      = (*Table)(nil)
	_ chain.Owner = (*Table)(nil)
)

// Tables manages table allocation. Freeing a chain of tables also frees
// their cells.
var Tables = &chain.Manager{
	Kind: "ACAD_TABLE",
	New: func() chain.Node {
		return new(Table)
	},
	Defaults: func(n chain.Node) {
		n.(*Table).init()
	},
	Sub: Cells,
}

func NewTable() *Table {
	return Tables.Init(nil).(*Table)
}

func InitTable(t *Table) *Table {
	if t == nil {
		return NewTable()
	}
	return Tables.Init(t).(*Table)
}

func (t *Table) init() {
	*t = Table{
		Direction:                   Vector{1, 0, 0},
		TextStyle:                   config.LoadedEntityDefaults().TextStyle,
		ContentColor:                ColorByLayer,
		HorizontalInsideBorderColor: ColorByLayer,
		BottomBorderColor:           ColorByLayer,
		VerticalInsideBorderColor:   ColorByLayer,
		RightBorderColor:            ColorByLayer,
		BorderLineweight:            LineweightByLayer,
	}
	t.Common.init()
}

func (t *Table) Type() string {
	return "ACAD_TABLE"
}

func (t *Table) Successor() chain.Node {
	if t.Next == nil {
		return nil
	}
	return t.Next
}

func (t *Table) Detach() {
	t.Next = nil
}

func (t *Table) Release() {
	t.released = true
}

func (t *Table) Released() bool {
	return t.released
}

func (t *Table) Owned() chain.Node {
	if t.Cells == nil {
		return nil
	}
	return t.Cells
}

func (t *Table) Disown() {
	t.Cells = nil
}

func (t *Table) table(ver dwire.Version) *record.Table {
	rt := record.NewTable(ver, t.Common.rules()...)
	rt.Add(t.InsertionPoint.bind(10)...)
	rt.Add(t.Direction.bind(11)...)
	rt.Add(
		record.Bind(2, &t.BlockName),
		record.Bind(7, &t.TextStyle),
		record.Bind(40, &t.HorizontalMargin),
		record.Bind(41, &t.VerticalMargin),
		record.Bind(63, &t.BackgroundColor),
		record.Bind(64, &t.ContentColor),
		record.Bind(65, &t.HorizontalInsideBorderColor),
		record.Bind(66, &t.BottomBorderColor),
		record.Bind(68, &t.VerticalInsideBorderColor),
		record.Bind(69, &t.RightBorderColor),
		record.Bind(70, &t.FlowDirection),
		record.Bind(90, &t.ValueFlag),
		record.Bind(91, &t.Rows),
		record.Bind(92, &t.GraphicsDataSize).Nth(1),
		record.Bind(92, &t.Columns).Nth(2),
		record.Bind(93, &t.OverrideFlag),
		record.Bind(94, &t.BorderColorOverride),
		record.Bind(95, &t.BorderLineweightOverride),
		record.Bind(96, &t.BorderVisibilityOverride),
		record.Bind(140, &t.TextHeight),
		record.Bind(141, &t.RowHeights).Limit(record.MaxParams),
		record.Bind(142, &t.ColumnWidths).Limit(record.MaxParams),
		record.Bind(170, &t.Alignment),
		record.Bind(274, &t.BorderLineweight),
		record.Bind(280, &t.TableDataVersion).Nth(1),
		record.Bind(280, &t.SuppressTitle).Nth(2),
		record.Bind(281, &t.SuppressHeaderRow),
		record.Bind(283, &t.FillOverride),
		record.Bind(342, &t.TableStyle),
		record.Bind(343, &t.OwningBlock),
		record.Markers(
			"AcDbEntity",
			"AcDbBlockReference",
			"AcDbBlockTable",
			"AcDbTable",
		),
	)
	return rt
}

// DecodeTable decodes an ACAD_TABLE whose announcement has been consumed,
// including its cells. The result is written to existing, or to a new table
// when existing is nil. On error nil is returned and existing is left
// untouched.
func DecodeTable(r dwire.TagReader, existing *Table) (*Table, record.Diagnostics, error) {
	dec := record.NewDecoder(r, "ACAD_TABLE")
	t, err := decodeTable(dec, existing)
	return t, dec.Diagnostics(), err
}

func decodeTable(dec *record.Decoder, existing *Table) (*Table, error) {
	if existing != nil {
		if existing.released {
			return nil, dec.Fail(record.ErrReleased)
		}
		if existing.Cells != nil {
			return nil, dec.Fail(errors.Wrap(chain.ErrOwnsChain, "ACAD_TABLE"))
		}
	}
	dec.SetRecord("ACAD_TABLE")

	scratch := new(Table)
	scratch.init()

	var tail *TableCell
	var startCell record.HandlerFunc
	startCell = func(tag dwire.Tag, d *record.Decoder) error {
		if tail != nil {
			tail.finish(d)
		}
		c := Cells.Init(Cells.Allocate()).(*TableCell)
		if tail == nil {
			scratch.Cells = c
		} else {
			tail.Next = c
		}
		tail = c

		d.SetRecord("CELL")
		if err := dwire.DecodeField(tag.Value, &c.Type); err != nil {
			d.Warnf(171, "malformed value: %v", err)
		}
		ct := record.NewTable(d.Version(), c.rules()...)
		ct.Add(record.Func(171, startCell))
		d.Switch(ct)
		return nil
	}

	rt := scratch.table(dec.Version())
	rt.Add(record.Func(171, startCell))
	if err := dec.Loop(rt); err != nil {
		if scratch.Cells != nil {
			_, _ = Cells.FreeChain(scratch.Cells)
		}
		return nil, err
	}
	if tail != nil {
		tail.finish(dec)
	}

	dec.SetRecord("ACAD_TABLE")
	scratch.finish()
	if scratch.TextStyle == "" {
		scratch.TextStyle = config.LoadedEntityDefaults().TextStyle
	}
	if scratch.Rows != len(scratch.RowHeights) {
		dec.Warnf(91, "declared %d rows, found %d row heights", scratch.Rows, len(scratch.RowHeights))
	}
	if scratch.Columns != len(scratch.ColumnWidths) {
		dec.Warnf(92, "declared %d columns, found %d column widths", scratch.Columns, len(scratch.ColumnWidths))
	}

	if existing == nil {
		existing = Tables.Allocate().(*Table)
	}
	scratch.Next = existing.Next
	*existing = *scratch
	return existing, nil
}

func (t *Table) check() error {
	if t.released {
		return record.ErrReleased
	}
	if err := t.Common.check("ACAD_TABLE"); err != nil {
		return err
	}
	if err := record.CheckRange("ACAD_TABLE", "Rows", 91, t.Rows, 0, record.MaxParams); err != nil {
		return err
	}
	if err := record.CheckRange("ACAD_TABLE", "Columns", 92, t.Columns, 0, record.MaxParams); err != nil {
		return err
	}
	if err := record.CheckLimit("ACAD_TABLE", "RowHeights", 141, len(t.RowHeights), record.MaxParams); err != nil {
		return err
	}
	if err := record.CheckLimit("ACAD_TABLE", "ColumnWidths", 142, len(t.ColumnWidths), record.MaxParams); err != nil {
		return err
	}
	for c := t.Cells; c != nil; c = c.Next {
		if err := c.check(); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes the table and its cells. Nothing is written when a
// precondition fails.
func (t *Table) Encode(w dwire.TagWriter) (record.Diagnostics, error) {
	e := record.NewEncoder(w)
	t.encodeTo(e)
	return e.Flush()
}

func (t *Table) encodeTo(e *record.Encoder) {
	if t == nil {
		e.Fail(record.ErrNilRecord)
		return
	}
	if err := t.check(); err != nil {
		e.Fail(err)
		return
	}
	defaults := config.LoadedEntityDefaults()
	e.SetRecord("ACAD_TABLE")
	t.Common.repair(e)
	if t.TextStyle == "" {
		e.Warnf(7, "empty text style, using %q", defaults.TextStyle)
		t.TextStyle = defaults.TextStyle
	}
	e.SetRecord("CELL")
	for c := t.Cells; c != nil; c = c.Next {
		if c.TextStyle == "" {
			e.Warnf(7, "empty text style, using %q", defaults.TextStyle)
			c.TextStyle = defaults.TextStyle
		}
	}

	e.Begin("ACAD_TABLE")
	t.Common.encodeHead(e)
	// the first 92 must be present so the column count is read as the second
	t.Common.encodeGraphics(e, true)
	e.Marker("AcDbBlockReference")
	e.Text(2, t.BlockName)
	e.Point(10, t.InsertionPoint.X, t.InsertionPoint.Y, t.InsertionPoint.Z)
	e.FieldUnless(39, t.Thickness, 0.0)
	e.Marker("AcDbTable")
	e.Field(280, t.TableDataVersion)
	e.FieldUnless(280, t.SuppressTitle, int16(0))
	e.FieldUnless(281, t.SuppressHeaderRow, int16(0))
	e.Text(342, t.TableStyle)
	e.Text(343, t.OwningBlock)
	e.Point(11, t.Direction.X, t.Direction.Y, t.Direction.Z)
	e.Field(90, t.ValueFlag)
	e.Count(91, t.Rows, len(t.RowHeights))
	e.Count(92, t.Columns, len(t.ColumnWidths))
	e.Field(93, t.OverrideFlag)
	e.Field(94, t.BorderColorOverride)
	e.Field(95, t.BorderLineweightOverride)
	e.Field(96, t.BorderVisibilityOverride)
	e.FieldUnless(70, t.FlowDirection, int16(0))
	e.FieldUnless(40, t.HorizontalMargin, 0.0)
	e.FieldUnless(41, t.VerticalMargin, 0.0)
	e.FieldUnless(7, t.TextStyle, defaults.TextStyle)
	e.FieldUnless(140, t.TextHeight, 0.0)
	e.FieldUnless(170, t.Alignment, int16(0))
	e.FieldUnless(63, t.BackgroundColor, int16(0))
	e.FieldUnless(64, t.ContentColor, int16(ColorByLayer))
	e.FieldUnless(65, t.HorizontalInsideBorderColor, int16(ColorByLayer))
	e.FieldUnless(66, t.BottomBorderColor, int16(ColorByLayer))
	e.FieldUnless(68, t.VerticalInsideBorderColor, int16(ColorByLayer))
	e.FieldUnless(69, t.RightBorderColor, int16(ColorByLayer))
	e.FieldUnless(274, t.BorderLineweight, LineweightByLayer)
	e.FieldUnless(283, t.FillOverride, int16(0))
	e.Extrusion(t.Extrusion.X, t.Extrusion.Y, t.Extrusion.Z)
	e.Floats(141, t.RowHeights)
	e.Floats(142, t.ColumnWidths)

	for c := t.Cells; c != nil; c = c.Next {
		c.encodeTo(e)
	}
	e.SetRecord("ACAD_TABLE")
}

func (t *Table) Equals(other Record) bool {
	cast, ok := other.(*Table)
	if !ok || t == nil || cast == nil {
		return false
	}
	if !t.Common.equals(&cast.Common) ||
		t.BlockName != cast.BlockName ||
		t.InsertionPoint != cast.InsertionPoint ||
		t.Direction != cast.Direction ||
		t.TableDataVersion != cast.TableDataVersion ||
		t.SuppressTitle != cast.SuppressTitle ||
		t.SuppressHeaderRow != cast.SuppressHeaderRow ||
		t.TableStyle != cast.TableStyle ||
		t.OwningBlock != cast.OwningBlock ||
		t.ValueFlag != cast.ValueFlag ||
		t.Rows != cast.Rows ||
		t.Columns != cast.Columns ||
		t.OverrideFlag != cast.OverrideFlag ||
		t.BorderColorOverride != cast.BorderColorOverride ||
		t.BorderLineweightOverride != cast.BorderLineweightOverride ||
		t.BorderVisibilityOverride != cast.BorderVisibilityOverride ||
		!floatsEqual(t.RowHeights, cast.RowHeights) ||
		!floatsEqual(t.ColumnWidths, cast.ColumnWidths) ||
		t.FlowDirection != cast.FlowDirection ||
		t.HorizontalMargin != cast.HorizontalMargin ||
		t.VerticalMargin != cast.VerticalMargin ||
		t.TextStyle != cast.TextStyle ||
		t.TextHeight != cast.TextHeight ||
		t.Alignment != cast.Alignment ||
		t.BackgroundColor != cast.BackgroundColor ||
		t.ContentColor != cast.ContentColor ||
		t.HorizontalInsideBorderColor != cast.HorizontalInsideBorderColor ||
		t.BottomBorderColor != cast.BottomBorderColor ||
		t.VerticalInsideBorderColor != cast.VerticalInsideBorderColor ||
		t.RightBorderColor != cast.RightBorderColor ||
		t.BorderLineweight != cast.BorderLineweight ||
		t.FillOverride != cast.FillOverride {
		return false
	}

	a, b := t.Cells, cast.Cells
	for ; a != nil && b != nil; a, b = a.Next, b.Next {
		if !a.Equals(b) {
			return false
		}
	}
	return a == nil && b == nil
}

// AppendRowHeight adds a row and keeps Rows in step.
func (t *Table) AppendRowHeight(h float64) error {
	if err := record.CheckLimit("ACAD_TABLE", "RowHeights", 141, len(t.RowHeights)+1, record.MaxParams); err != nil {
		return err
	}
	t.RowHeights = append(t.RowHeights, h)
	t.Rows = len(t.RowHeights)
	return nil
}

// AppendColumnWidth adds a column and keeps Columns in step.
func (t *Table) AppendColumnWidth(w float64) error {
	if err := record.CheckLimit("ACAD_TABLE", "ColumnWidths", 142, len(t.ColumnWidths)+1, record.MaxParams); err != nil {
		return err
	}
	t.ColumnWidths = append(t.ColumnWidths, w)
	t.Columns = len(t.ColumnWidths)
	return nil
}

// AppendCell links c, and any cells following it, to the end of the cell
// chain.
func (t *Table) AppendCell(c *TableCell) error {
	if c == nil {
		return chain.ErrNilNode
	}
	if c.released || t.released {
		return record.ErrReleased
	}
	if t.Cells == nil {
		t.Cells = c
		return nil
	}
	tail := t.Cells
	for tail.Next != nil {
		tail = tail.Next
	}
	tail.Next = c
	return nil
}

func (t *Table) CellCount() int {
	if t.Cells == nil {
		return 0
	}
	return chain.Len(t.Cells)
}

// FreeCells releases the cell chain and clears it.
func (t *Table) FreeCells() (int, error) {
	n, err := FreeTableCellChain(t.Cells)
	if err != nil {
		return n, err
	}
	t.Cells = nil
	return n, nil
}

// FreeTable releases a single table. It fails when t is still linked to a
// successor or still owns cells.
func FreeTable(t *Table) error {
	if t == nil {
		return chain.ErrNilNode
	}
	return Tables.FreeOne(t)
}

func FreeTableChain(head *Table) (int, error) {
	if head == nil {
		return 0, nil
	}
	return Tables.FreeChain(head)
}
