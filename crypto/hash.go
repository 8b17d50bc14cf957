package crypto

import (
	"bytes"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// Hash is a blake2b-256 digest of encoded record bytes.
type Hash [32]byte

var ZeroHash Hash

var ErrHashMismatch = errors.New("content hash mismatch")

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) Encode(w io.Writer) error {
	_, err := w.Write(h.Bytes())
	return err
}

func (h *Hash) Decode(r io.Reader) error {
	var buf Hash
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	*h = buf
	return nil
}

func (h Hash) Bytes() []byte {
	return h[:]
}

// Verify checks that data hashes to h.
func (h Hash) Verify(data ...[]byte) error {
	actual := Blake2B256(data...)
	if !bytes.Equal(actual[:], h[:]) {
		return errors.Wrapf(ErrHashMismatch, "expected %s, got %s", h, actual)
	}
	return nil
}

func Blake2B256(data ...[]byte) Hash {
	// never returns an error if key is nil
	h, _ := blake2b.New256(nil)
	for _, chunk := range data {
		h.Write(chunk)
	}
	b := h.Sum(nil)
	var out Hash
	copy(out[:], b)
	return out
}

func NewHashFromBytes(b []byte) (Hash, error) {
	if len(b) != 32 {
		return ZeroHash, errors.New("hash must be 32 bytes")
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

func NewHashFromHex(in string) (Hash, error) {
	b, err := hex.DecodeString(in)
	if err != nil {
		return ZeroHash, errors.Wrap(err, "invalid hash hex")
	}
	return NewHashFromBytes(b)
}
