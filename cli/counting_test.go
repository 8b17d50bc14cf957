package cli

import (
	"bytes"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountingReader(t *testing.T) {
	r := NewCountingReader(strings.NewReader("  0\nEOF\n"))
	data, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, uint64(len(data)), r.Count())
}

func TestCountingWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewCountingWriter(&buf)
	_, err := w.Write([]byte("999\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("hi\n"))
	require.NoError(t, err)
	require.Equal(t, uint64(7), w.Count())
}
