package dwire

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestReader(t *testing.T) {
	in := "  0\r\nPOLYLINE\r\n  8\r\n0\r\n 10\r\n  1.5  \r\n  1\r\n  padded text  \r\n"
	r := NewReader(strings.NewReader(in), R12, "test.dxf")
	require.Equal(t, "test.dxf", r.Name())
	require.Equal(t, R12, r.Version())

	tag, err := r.Peek()
	require.NoError(t, err)
	require.Equal(t, Tag{Code: 0, Value: "POLYLINE"}, tag)
	require.True(t, tag.IsTerminator())
	require.Equal(t, 2, r.LineNumber())

	tag, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, Tag{Code: 0, Value: "POLYLINE"}, tag)

	tag, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, Tag{Code: 8, Value: "0"}, tag)

	tag, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, Tag{Code: 10, Value: "1.5"}, tag)

	tag, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, Tag{Code: 1, Value: "  padded text  "}, tag)
	require.Equal(t, 8, r.LineNumber())

	_, err = r.Next()
	require.Equal(t, io.EOF, err)
	_, err = r.Peek()
	require.Equal(t, io.EOF, err)
}

func TestReader_Errors(t *testing.T) {
	r := NewReader(strings.NewReader("abc\nvalue\n  8\n0\n"), R2000, "bad.dxf")
	_, err := r.Next()
	require.Error(t, err)
	require.True(t, IsStreamError(err))
	require.Equal(t, ErrBadGroupCode, errors.Cause(err.(*StreamError).Err))
	require.Contains(t, err.Error(), "bad.dxf")

	// errors are sticky
	_, err2 := r.Next()
	require.Equal(t, err, err2)

	r = NewReader(strings.NewReader("  8\n"), R2000, "")
	_, err = r.Next()
	require.True(t, IsStreamError(err))

	long := "  1\n" + strings.Repeat("x", 100) + "\n"
	r = NewConfiguredReader(strings.NewReader(long), R2000, "", ReaderConfig{MaxLineLen: 50})
	_, err = r.Next()
	require.True(t, IsStreamError(err))
	require.Equal(t, ErrLineTooLong, errors.Cause(err.(*StreamError).Err))
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WriterOptions{Version: R14})
	require.NoError(t, w.WriteTag(Tag{Code: 0, Value: "LINE"}))
	require.NoError(t, w.WriteTag(Tag{Code: 100, Value: "AcDbEntity"}))
	require.NoError(t, w.WriteComment("hello"))
	require.NoError(t, w.Flush())
	require.Equal(t, "  0\nLINE\n100\nAcDbEntity\n999\nhello\n", buf.String())
	require.Equal(t, 6, w.LineNumber())
	require.Equal(t, R14, w.Options().Version)
	require.Equal(t, DefaultPrecision, w.Options().FloatPrecision())

	require.Error(t, w.WriteTag(Tag{Code: 1, Value: "a\nb"}))
	require.Error(t, w.WriteTag(Tag{Code: 1, Value: "ok"}))

	w = NewNamedWriter(failingWriter{}, WriterOptions{}, "out.dxf")
	require.NoError(t, w.WriteTag(Tag{Code: 0, Value: "EOF"}))
	err := w.Flush()
	require.True(t, IsStreamError(err))
	require.Contains(t, err.Error(), "out.dxf")
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("r2000")
	require.NoError(t, err)
	require.Equal(t, R2000, v)
	require.Equal(t, "AC1015", v.ACADVer())

	v, err = ParseVersion("AC1014")
	require.NoError(t, err)
	require.Equal(t, R14, v)

	v, err = ParseVersion("AC1009")
	require.NoError(t, err)
	require.Equal(t, R12, v)

	_, err = ParseVersion("R99")
	require.Equal(t, ErrUnknownVersion, errors.Cause(err))
	require.False(t, Version(0).Valid())
	require.Equal(t, "unknown", Version(0).String())
	require.True(t, R11 < R13)
}
