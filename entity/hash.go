package entity

import (
	"bytes"

	"dxf/crypto"
	"dxf/dwire"
	"dxf/record"

	"github.com/pkg/errors"
)

// Marshal encodes rec on its own with the given writer options.
func Marshal(rec Record, opts dwire.WriterOptions) ([]byte, record.Diagnostics, error) {
	if isNil(rec) {
		return nil, nil, record.ErrNilRecord
	}
	var buf bytes.Buffer
	w := dwire.NewWriter(&buf, opts)
	diags, err := rec.Encode(w)
	if err != nil {
		return nil, diags, err
	}
	if err := w.Flush(); err != nil {
		return nil, diags, errors.Wrap(err, "error flushing record")
	}
	return buf.Bytes(), diags, nil
}

// Unmarshal decodes a single record produced by Marshal.
func Unmarshal(data []byte, v dwire.Version) (Record, record.Diagnostics, error) {
	r := dwire.NewReader(bytes.NewReader(data), v, "")
	rec, diags, err := Decode(r)
	if err != nil {
		return nil, diags, err
	}
	if _, err := r.Peek(); err == nil {
		_ = Free(rec)
		return nil, diags, errors.New("trailing data after record")
	}
	return rec, diags, nil
}

// ContentHash returns the blake2b-256 hash of rec's encoding.
func ContentHash(rec Record, opts dwire.WriterOptions) (crypto.Hash, error) {
	data, _, err := Marshal(rec, opts)
	if err != nil {
		return crypto.ZeroHash, err
	}
	return crypto.Blake2B256(data), nil
}
