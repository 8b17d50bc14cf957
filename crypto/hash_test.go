package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestBlake2B256(t *testing.T) {
	tests := []struct {
		in  []string
		out string
	}{
		{
			[]string{""},
			"0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8",
		},
		{
			[]string{"", "", "", ""},
			"0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8",
		},
		{
			[]string{"cafe"},
			"4e400278c29c37ee640391dfb9792390a8ac9adb6200ed47c725a86099a8586c",
		},
		{
			[]string{"0000000000000000000000000000000000000000000000000000000000000000"},
			"89eb0d6a8a691dae2cd15ed0369931ce0a949ecafa5c3f93f8121833646e15c3",
		},
		{
			[]string{"00000000000000000000000000000000", "00000000000000000000000000000000"},
			"89eb0d6a8a691dae2cd15ed0369931ce0a949ecafa5c3f93f8121833646e15c3",
		},
	}
	for _, tt := range tests {
		var pieces [][]byte
		for _, hexPiece := range tt.in {
			piece, err := hex.DecodeString(hexPiece)
			require.NoError(t, err)
			pieces = append(pieces, piece)
		}
		out := Blake2B256(pieces...).String()
		require.Equal(t, tt.out, out)
	}
}

func TestHash_Verify(t *testing.T) {
	data := []byte("  0\nLINE\n  8\n0\n")
	h := Blake2B256(data)
	require.NoError(t, h.Verify(data))
	require.NoError(t, h.Verify(data[:5], data[5:]))

	err := h.Verify([]byte("  0\nLINE\n  8\n1\n"))
	require.Error(t, err)
	require.Equal(t, ErrHashMismatch, errors.Cause(err))
}

func TestHash_Codec(t *testing.T) {
	h := Blake2B256([]byte("cafe"))

	parsed, err := NewHashFromHex(h.String())
	require.NoError(t, err)
	require.Equal(t, h, parsed)

	_, err = NewHashFromHex("zz")
	require.Error(t, err)
	_, err = NewHashFromHex("cafe")
	require.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, h.Encode(&buf))
	var decoded Hash
	require.NoError(t, decoded.Decode(&buf))
	require.Equal(t, h, decoded)
	require.Error(t, decoded.Decode(&buf))
}
