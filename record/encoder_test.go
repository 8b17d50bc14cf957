package record

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"dxf/dwire"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func lines(tags ...string) string {
	return strings.Join(tags, "\n") + "\n"
}

func TestEncoder_Flush(t *testing.T) {
	var buf bytes.Buffer
	w := dwire.NewWriter(&buf, dwire.WriterOptions{Version: dwire.R2000})
	e := NewEncoder(w)
	e.Begin("LINE")
	e.Handle(5, 0x2a)
	e.Handle(5, dwire.NoHandle)
	e.Group("ACAD_REACTORS", 330, "1F")
	e.Group("ACAD_XDICTIONARY", 360, "")
	e.Marker("AcDbEntity")
	e.Field(8, "0")
	e.FieldUnless(62, 256, 256)
	e.FieldUnless(62, 1, 256)
	e.Text(1, "")
	e.Point(10, 1, 2, 0)
	e.Extrusion(0, 0, 1)
	e.Extrusion(0, 0, -1)
	diags, err := e.Flush()
	require.NoError(t, err)
	require.Empty(t, diags)
	require.NoError(t, w.Flush())

	require.Equal(t, lines(
		"  0", "LINE",
		"  5", "2a",
		"102", "{ACAD_REACTORS",
		"330", "1F",
		"102", "}",
		"100", "AcDbEntity",
		"  8", "0",
		" 62", "1",
		" 10", "1.000000",
		" 20", "2.000000",
		" 30", "0.000000",
		"210", "0.000000",
		"220", "0.000000",
		"230", "-1.000000",
	), buf.String())
}

func TestEncoder_VersionGates(t *testing.T) {
	var buf bytes.Buffer
	w := dwire.NewWriter(&buf, dwire.WriterOptions{Version: dwire.R11, Precision: 1})
	e := NewEncoder(w)
	require.True(t, e.AtMost(dwire.R11))
	require.False(t, e.AtLeast(dwire.R12))
	e.Begin("LINE")
	e.Group("ACAD_REACTORS", 330, "1F")
	e.Marker("AcDbEntity")
	e.Extrusion(0, 0, -1)
	e.Field(39, 2.5)
	_, err := e.Flush()
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	require.Equal(t, lines("  0", "LINE", " 39", "2.5"), buf.String())
}

func TestEncoder_RepeatsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	w := dwire.NewWriter(&buf, dwire.WriterOptions{Version: dwire.R2000, Precision: dwire.ShortestPrecision})
	e := NewEncoder(w)
	e.SetRecord("CELL")
	e.Strings(3, []string{"a", "b"})
	e.Floats(141, []float64{0.5})
	e.Count(179, 3, 2)
	e.Handles(331, []dwire.Handle{1, 2})
	e.Comment("note")
	require.Len(t, e.Staged(), 7)
	diags, err := e.Flush()
	require.NoError(t, err)
	require.Len(t, diags, 1)
	require.Equal(t, 179, diags[0].Code)
	require.Equal(t, "CELL", diags[0].Record)
	require.NoError(t, w.Flush())
	require.Equal(t, lines(
		"  3", "a",
		"  3", "b",
		"141", "0.5",
		"179", "3",
		"331", "1",
		"331", "2",
		"999", "note",
	), buf.String())
}

func TestEncoder_FailWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	w := dwire.NewWriter(&buf, dwire.WriterOptions{Version: dwire.R2000})
	e := NewEncoder(w)
	e.Begin("LINE")
	e.Field(8, "0")
	e.Field(10, math.NaN())
	e.Field(20, 1.0)
	require.Error(t, e.Err())
	_, err := e.Flush()
	require.Error(t, err)
	require.Contains(t, err.Error(), "code 10")
	require.NoError(t, w.Flush())
	require.Empty(t, buf.String())

	// the encoder is reusable after a failed flush
	e.Begin("LINE")
	_, err = e.Flush()
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	require.Equal(t, lines("  0", "LINE"), buf.String())

	e.Fail(ErrReleased)
	e.Fail(ErrNilRecord)
	_, err = e.Flush()
	require.Equal(t, ErrReleased, errors.Cause(err))
}

func TestEncoder_LineBreakFailsBeforeWriting(t *testing.T) {
	var buf bytes.Buffer
	w := dwire.NewWriter(&buf, dwire.WriterOptions{Version: dwire.R2000})
	e := NewEncoder(w)
	e.Begin("LINE")
	e.Field(8, "0")
	e.Text(1, "two\nlines")
	e.Field(62, 1)
	require.Len(t, e.Staged(), 2)

	_, err := e.Flush()
	var re *RangeError
	require.True(t, errors.As(err, &re))
	require.Equal(t, 1, re.Code)
	require.NoError(t, w.Flush())
	require.Empty(t, buf.String())

	e.Begin("LINE")
	e.Strings(310, []string{"a", "b\r"})
	_, err = e.Flush()
	require.True(t, IsRangeError(err))
}

func TestChecks(t *testing.T) {
	require.NoError(t, CheckRange("POLYLINE", "Visibility", 60, 1, 0, 1))
	err := CheckRange("POLYLINE", "Visibility", 60, 2, 0, 1)
	require.True(t, IsRangeError(err))
	require.Equal(t, "POLYLINE Visibility (code 60) = 2: must be in [0, 1]", err.Error())

	require.NoError(t, CheckPinned("POLYLINE", "VerticesFollow", 66, 1, 1))
	err = CheckPinned("POLYLINE", "Point.X", 10, 1.5, 0.0)
	require.True(t, IsRangeError(err))
	require.Contains(t, err.Error(), "must be 0")

	require.NoError(t, CheckLimit("TABLE", "RowHeights", 141, MaxParams, MaxParams))
	require.True(t, IsRangeError(CheckLimit("TABLE", "RowHeights", 141, MaxParams+1, MaxParams)))
	require.True(t, IsRangeError(errors.Wrap(CheckLimit("T", "F", 1, 2, 1), "wrapped")))
}
