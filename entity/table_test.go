package entity

import (
	"bytes"
	"strings"
	"testing"

	"dxf/chain"
	"dxf/dwire"
	"dxf/record"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var tablePairs = []string{
	"0", "ACAD_TABLE",
	"5", "2a",
	"100", "AcDbEntity",
	"8", "0",
	"92", "0",
	"100", "AcDbBlockReference",
	"2", "*T1",
	"10", "0.0",
	"20", "0.0",
	"30", "0.0",
	"100", "AcDbTable",
	"280", "0",
	"280", "1",
	"342", "1d",
	"11", "1.0",
	"21", "0.0",
	"31", "0.0",
	"90", "0",
	"91", "2",
	"92", "3",
	"93", "0",
	"94", "0",
	"95", "0",
	"96", "0",
	"141", "1.5",
	"141", "1.5",
	"142", "2.0",
	"142", "2.0",
	"142", "2.0",
	"171", "1",
	"172", "0",
	"173", "0",
	"174", "0",
	"175", "1.0",
	"176", "1.0",
	"178", "0",
	"145", "0.0",
	"1", "Hello",
	"144", "1.0",
	"179", "0",
	"171", "2",
	"172", "0",
	"173", "0",
	"174", "0",
	"175", "1.0",
	"176", "1.0",
	"178", "0",
	"145", "0.0",
	"340", "1f",
	"144", "0.5",
	"179", "1",
	"331", "30",
}

func TestTable_Decode(t *testing.T) {
	rec, diags, err := Decode(stream(dwire.R2000, tablePairs...))
	require.NoError(t, err)
	require.Empty(t, diags)

	tbl := rec.(*Table)
	require.Equal(t, dwire.Handle(0x2a), tbl.Handle)
	// the first 92 is the graphics size, the second the column count
	require.Equal(t, 0, tbl.GraphicsDataSize)
	require.Equal(t, 3, tbl.Columns)
	require.Equal(t, 2, tbl.Rows)
	require.Equal(t, int16(0), tbl.TableDataVersion)
	require.Equal(t, int16(1), tbl.SuppressTitle)
	require.Equal(t, "*T1", tbl.BlockName)
	require.Equal(t, "1d", tbl.TableStyle)
	require.Equal(t, []float64{1.5, 1.5}, tbl.RowHeights)
	require.Equal(t, []float64{2, 2, 2}, tbl.ColumnWidths)
	require.Equal(t, "STANDARD", tbl.TextStyle)
	require.Equal(t, 2, tbl.CellCount())
	require.Equal(t, 2, Children(tbl))

	text := tbl.Cells
	require.Equal(t, CellText, text.Type)
	require.Equal(t, "Hello", text.FullText())
	require.Equal(t, "STANDARD", text.TextStyle)

	block := text.Next
	require.Equal(t, CellBlock, block.Type)
	require.Equal(t, "1f", block.BlockRecord)
	require.Equal(t, 0.5, block.BlockScale)
	require.Equal(t, []dwire.Handle{0x30}, block.AttdefHandles)
	require.Nil(t, block.Next)

	out := encode(t, tbl, dwire.WriterOptions{Version: dwire.R2000})
	first := strings.Index(out, " 92\n0\n")
	second := strings.Index(out, " 92\n3\n")
	require.True(t, first >= 0 && second > first)
	require.Contains(t, out, "280\n0\n280\n1\n")

	again, diags, err := Decode(dwire.NewReader(strings.NewReader(out), dwire.R2000, ""))
	require.NoError(t, err)
	require.Empty(t, diags)
	require.True(t, tbl.Equals(again))

	n, err := FreeTableChain(tbl)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.True(t, text.Released())
	require.True(t, block.Released())
}

func TestTable_Occurrences(t *testing.T) {
	r := stream(dwire.R2000,
		"0", "ACAD_TABLE",
		"92", "8",
		"280", "2",
		"92", "4",
		"92", "5",
		"280", "0",
		"280", "1",
	)
	rec, diags, err := Decode(r)
	require.NoError(t, err)
	tbl := rec.(*Table)
	require.Equal(t, 8, tbl.GraphicsDataSize)
	require.Equal(t, 4, tbl.Columns)
	require.Equal(t, int16(2), tbl.TableDataVersion)
	require.Equal(t, int16(0), tbl.SuppressTitle)
	require.True(t, diags.HasCode(92))
	require.True(t, diags.HasCode(280))

	// the column count was declared but no widths followed
	var unexpected, counts int
	for _, d := range diags {
		if strings.Contains(d.Message, "unexpected occurrence 3") {
			unexpected++
		}
		if strings.Contains(d.Message, "declared 4 columns") {
			counts++
		}
	}
	require.Equal(t, 2, unexpected)
	require.Equal(t, 1, counts)
}

func TestTable_EncodeWritesGraphicsSize(t *testing.T) {
	tbl := NewTable()
	out := encode(t, tbl, dwire.WriterOptions{Version: dwire.R2000, Precision: 1})
	require.Equal(t, strings.Join([]string{
		"  0", "ACAD_TABLE",
		"100", "AcDbEntity",
		"  8", "0",
		" 92", "0",
		"100", "AcDbBlockReference",
		" 10", "0.0",
		" 20", "0.0",
		" 30", "0.0",
		"100", "AcDbTable",
		"280", "0",
		" 11", "1.0",
		" 21", "0.0",
		" 31", "0.0",
		" 90", "0",
		" 91", "0",
		" 92", "0",
		" 93", "0",
		" 94", "0",
		" 95", "0",
		" 96", "0",
	}, "\n")+"\n", out)

	rec, _, err := Decode(dwire.NewReader(strings.NewReader(out), dwire.R2000, ""))
	require.NoError(t, err)
	require.True(t, tbl.Equals(rec))
}

func TestTable_CountMismatch(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AppendRowHeight(1))
	tbl.Rows = 3
	cell := NewTableCell()
	require.NoError(t, cell.AppendAttdef(0x10))
	cell.AttdefCount = 2
	require.NoError(t, tbl.AppendCell(cell))

	var buf bytes.Buffer
	w := dwire.NewWriter(&buf, dwire.WriterOptions{Version: dwire.R2000})
	diags, err := tbl.Encode(w)
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	require.True(t, diags.HasCode(91))
	require.True(t, diags.HasCode(179))
	require.Contains(t, buf.String(), " 91\n3\n")
	require.Contains(t, buf.String(), "179\n2\n331\n10\n")

	_, diags, err = Decode(dwire.NewReader(&buf, dwire.R2000, ""))
	require.NoError(t, err)
	require.True(t, diags.HasCode(91))
	require.True(t, diags.HasCode(179))
}

func TestTableCell_Text(t *testing.T) {
	long := strings.Repeat("a", ChunkLen) + strings.Repeat("b", ChunkLen) + "tail"

	cell := NewTableCell()
	require.NoError(t, cell.SetText(long))
	require.Len(t, cell.TextChunks, 2)
	require.Equal(t, "tail", cell.Text)
	require.Equal(t, long, cell.FullText())

	require.NoError(t, cell.SetText(strings.Repeat("c", ChunkLen)))
	require.Empty(t, cell.TextChunks)
	require.Len(t, cell.Text, ChunkLen)

	require.NoError(t, cell.SetText(long))
	tbl := NewTable()
	require.NoError(t, tbl.AppendCell(cell))
	out := encode(t, tbl, dwire.WriterOptions{Version: dwire.R2000})
	require.Equal(t, 2, strings.Count(out, "  3\n"))

	rec, diags, err := Decode(dwire.NewReader(strings.NewReader(out), dwire.R2000, ""))
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Equal(t, long, rec.(*Table).Cells.FullText())

	// legacy files store the chunks under code 2
	rec, diags, err = Decode(stream(dwire.R2000,
		"0", "ACAD_TABLE",
		"2", "*T2",
		"171", "1",
		"2", strings.Repeat("x", ChunkLen),
		"1", "y",
	))
	require.NoError(t, err)
	require.Empty(t, diags)
	tbl = rec.(*Table)
	require.Equal(t, "*T2", tbl.BlockName)
	require.Equal(t, strings.Repeat("x", ChunkLen)+"y", tbl.Cells.FullText())

	cell = NewTableCell()
	cell.Text = long
	tbl = NewTable()
	require.NoError(t, tbl.AppendCell(cell))
	_, err = tbl.Encode(dwire.NewWriter(&bytes.Buffer{}, dwire.WriterOptions{Version: dwire.R2000}))
	require.True(t, record.IsRangeError(err))
}

func TestTableCell_Type(t *testing.T) {
	cell := NewTableCell()
	require.True(t, record.IsRangeError(cell.SetType(3)))
	require.Equal(t, CellText, cell.Type)
	require.NoError(t, cell.SetType(CellBlock))
	require.Error(t, cell.AppendAttdef(dwire.NoHandle))

	rec, diags, err := Decode(stream(dwire.R2000,
		"0", "ACAD_TABLE",
		"171", "5",
		"171", "1",
	))
	require.NoError(t, err)
	require.True(t, diags.HasCode(171))
	tbl := rec.(*Table)
	require.Equal(t, int16(5), tbl.Cells.Type)

	_, err = tbl.Encode(dwire.NewWriter(&bytes.Buffer{}, dwire.WriterOptions{Version: dwire.R2000}))
	require.True(t, record.IsRangeError(err))
}

func TestTableCell_OverrideFlagGate(t *testing.T) {
	pairs := []string{
		"0", "ACAD_TABLE",
		"91", "1",
		"171", "1",
		"91", "4",
	}
	rec, diags, err := Decode(stream(dwire.R2007, pairs...))
	require.NoError(t, err)
	tbl := rec.(*Table)
	require.Equal(t, 1, tbl.Rows)
	require.Equal(t, 4, tbl.Cells.OverrideFlag)
	// one row declared without heights
	require.Len(t, diags, 1)

	rec, diags, err = Decode(stream(dwire.R2000, pairs...))
	require.NoError(t, err)
	require.Equal(t, 0, rec.(*Table).Cells.OverrideFlag)
	require.Len(t, diags, 2)
}

func TestTable_RoundTripAllFields(t *testing.T) {
	tbl := NewTable()
	fillCommon(&tbl.Common, 0x50)
	tbl.BlockName = "*T7"
	tbl.InsertionPoint = Vector{1.5, 2.5, 0.25}
	tbl.Direction = Vector{0, 1, 0}
	tbl.TableDataVersion = 1
	tbl.SuppressTitle = 1
	tbl.SuppressHeaderRow = 1
	tbl.TableStyle = "1d"
	tbl.OwningBlock = "1e"
	tbl.ValueFlag = 2
	tbl.OverrideFlag = 3
	tbl.BorderColorOverride = 4
	tbl.BorderLineweightOverride = 5
	tbl.BorderVisibilityOverride = 6
	require.NoError(t, tbl.AppendRowHeight(1.25))
	require.NoError(t, tbl.AppendRowHeight(2.75))
	require.NoError(t, tbl.AppendColumnWidth(4.5))
	tbl.FlowDirection = 1
	tbl.HorizontalMargin = 0.125
	tbl.VerticalMargin = 0.375
	tbl.TextStyle = "ROMANS"
	tbl.TextHeight = 0.25
	tbl.Alignment = 5
	tbl.BackgroundColor = 1
	tbl.ContentColor = 2
	tbl.HorizontalInsideBorderColor = 3
	tbl.BottomBorderColor = 4
	tbl.VerticalInsideBorderColor = 5
	tbl.RightBorderColor = 6
	tbl.BorderLineweight = 25
	tbl.FillOverride = 1

	c := NewTableCell()
	c.Flag = 1
	c.Merged = 1
	c.Autofit = 1
	c.BorderWidth = 2
	c.BorderHeight = 3
	c.OverrideFlag = 8
	c.Override = 1
	c.VirtualEdge = 2
	c.Rotation = 0.5
	require.NoError(t, c.SetText(strings.Repeat("x", ChunkLen)+"tail"))
	c.TextStyle = "ROMANS"
	c.TextHeight = 2.5
	c.Alignment = 4
	c.BackgroundColor = 7
	c.ContentColor = 8
	c.RightBorderColor = 9
	c.BottomBorderColor = 10
	c.LeftBorderColor = 11
	c.TopBorderColor = 12
	c.RightBorderLineweight = 13
	c.BottomBorderLineweight = 15
	c.LeftBorderLineweight = 18
	c.TopBorderLineweight = 20
	c.FillOverride = 1
	c.RightBorderVisible = 1
	c.BottomBorderVisible = 1
	c.LeftBorderVisible = 1
	c.TopBorderVisible = 1
	c.FieldObject = "6a"
	require.NoError(t, tbl.AppendCell(c))

	b := NewTableCell()
	require.NoError(t, b.SetType(CellBlock))
	b.BlockRecord = "6b"
	b.BlockScale = 0.5
	require.NoError(t, b.AppendAttdef(0x6c))
	require.NoError(t, b.AppendAttdef(0x6d))
	b.AttdefText = "TAG"
	require.NoError(t, tbl.AppendCell(b))

	opts := dwire.WriterOptions{Version: dwire.R2018}
	out := encode(t, tbl, opts)
	require.Contains(t, out, " 91\n8\n")
	require.Contains(t, out, "179\n2\n331\n6c\n331\n6d\n")

	rec, diags, err := Decode(dwire.NewReader(strings.NewReader(out), dwire.R2018, ""))
	require.NoError(t, err)
	require.Empty(t, diags)
	got := rec.(*Table)
	require.True(t, tbl.Equals(got))
	require.Equal(t, strings.Repeat("x", ChunkLen)+"tail", got.Cells.FullText())
	require.Equal(t, out, encode(t, got, opts))

	_, err = FreeTableChain(got)
	require.NoError(t, err)
	_, err = FreeTableChain(tbl)
	require.NoError(t, err)
}

func TestTable_ChainLifetime(t *testing.T) {
	tbl := NewTable()
	c1 := NewTableCell()
	c2 := NewTableCell()
	require.NoError(t, tbl.AppendCell(c1))
	require.NoError(t, tbl.AppendCell(c2))

	require.Equal(t, chain.ErrOwnsChain, errors.Cause(FreeTable(tbl)))
	require.Equal(t, chain.ErrNotIsolated, errors.Cause(FreeTableCell(c1)))
	require.True(t, c1.Next == c2)
	require.False(t, c1.Released())

	n, err := tbl.FreeCells()
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Nil(t, tbl.Cells)
	require.NoError(t, FreeTable(tbl))
	require.Equal(t, chain.ErrDoubleFree, errors.Cause(FreeTable(tbl)))

	_, _, err = DecodeTable(stream(dwire.R2000, "2", "*T"), tbl)
	require.Equal(t, record.ErrReleased, errors.Cause(err))
}

func TestTable_DecodeFailureFreesCells(t *testing.T) {
	before := Cells.Stats()
	existing := NewTable()
	existing.BlockName = "KEEP"

	r := dwire.NewReader(strings.NewReader("171\n1\n  1\na\n171\n1\n  1\n"), dwire.R2000, "broken")
	got, _, err := DecodeTable(r, existing)
	require.Nil(t, got)
	require.True(t, dwire.IsStreamError(err))
	require.Equal(t, "KEEP", existing.BlockName)
	require.Nil(t, existing.Cells)

	after := Cells.Stats()
	require.Equal(t, before.Allocated+2, after.Allocated)
	require.Equal(t, before.Released+2, after.Released)
}
