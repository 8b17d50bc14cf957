package dwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type point2 struct {
	x, y float64
}

func (p *point2) Decode(raw string) error {
	return DecodeFields([]string{raw, raw}, &p.x, &p.y)
}

func (p *point2) Encode(precision int) (string, error) {
	return EncodeField(p.x+p.y, precision)
}

func TestDecodeFields(t *testing.T) {
	var (
		s      string
		i      int
		i16    int16
		i32    int32
		f      float64
		h      Handle
		b      bool
		chunks []string
		widths []float64
		owners []Handle
		p      point2
	)

	require.NoError(t, DecodeFields(
		[]string{"0", "  42", "-1", "70000", "1.5", "2F", "1", "abc", "2.25", "1a", "3"},
		&s, &i, &i16, &i32, &f, &h, &b, &chunks, &widths, &owners, &p,
	))
	require.Equal(t, "0", s)
	require.Equal(t, 42, i)
	require.EqualValues(t, -1, i16)
	require.EqualValues(t, 70000, i32)
	require.Equal(t, 1.5, f)
	require.Equal(t, Handle(0x2f), h)
	require.True(t, b)
	require.Equal(t, []string{"abc"}, chunks)
	require.Equal(t, []float64{2.25}, widths)
	require.Equal(t, []Handle{0x1a}, owners)
	require.Equal(t, point2{3, 3}, p)

	require.NoError(t, DecodeField("def", &chunks))
	require.Equal(t, []string{"abc", "def"}, chunks)
}

func TestDecode_Errors(t *testing.T) {
	var boolVal bool
	err := DecodeField("2", &boolVal)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid boolean value")

	var i16 int16
	err = DecodeField("40000", &i16)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid integer value")

	var f float64
	require.Error(t, DecodeField("NaN", &f))
	require.Error(t, DecodeField("abc", &f))

	var h Handle
	require.Error(t, DecodeField("", &h))
	require.Error(t, DecodeField("xyz", &h))

	err = DecodeField("1", 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot be decoded")

	err = DecodeFields([]string{"1"}, &f, &h)
	require.Error(t, err)
}

func TestEncodeField(t *testing.T) {
	tests := []struct {
		in        interface{}
		precision int
		out       string
	}{
		{"ABC", DefaultPrecision, "ABC"},
		{256, DefaultPrecision, "256"},
		{int16(-1), DefaultPrecision, "-1"},
		{int32(70000), DefaultPrecision, "70000"},
		{true, DefaultPrecision, "1"},
		{false, DefaultPrecision, "0"},
		{1.0, DefaultPrecision, "1.000000"},
		{1.25, 2, "1.25"},
		{0.1, ShortestPrecision, "0.1"},
		{Handle(255), DefaultPrecision, "ff"},
		{&point2{1, 2}, 1, "3.0"},
	}
	for _, tt := range tests {
		out, err := EncodeField(tt.in, tt.precision)
		require.NoError(t, err)
		require.Equal(t, tt.out, out)
	}

	_, err := EncodeField(NoHandle, DefaultPrecision)
	require.Error(t, err)
	_, err = EncodeField(struct{}{}, DefaultPrecision)
	require.Error(t, err)
}

func TestParseHandle(t *testing.T) {
	h, err := ParseHandle("FFFF")
	require.NoError(t, err)
	require.Equal(t, Handle(0xffff), h)
	require.Equal(t, "ffff", h.String())
	require.True(t, h.Valid())

	h, err = ParseHandle("-")
	require.Error(t, err)
	require.Equal(t, NoHandle, h)
	require.Equal(t, "", NoHandle.String())
}
