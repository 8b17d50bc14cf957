package dwire

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultMaxLineLen = 4096
)

type ReaderConfig struct {
	// MaxLineLen is the longest line the reader accepts before failing the
	// stream. DXF itself limits lines to 2049 characters.
	MaxLineLen int
}

var DefaultReaderConfig = ReaderConfig{
	MaxLineLen: DefaultMaxLineLen,
}

// Reader reads tags from an io.Reader. It is not safe for concurrent use;
// each decode session owns its Reader.
type Reader struct {
	br      *bufio.Reader
	name    string
	version Version
	cfg     ReaderConfig
	line    int
	peeked  *Tag
	err     error
}

var _ TagReader = (*Reader)(nil)

func NewReader(r io.Reader, version Version, name string) *Reader {
	return NewConfiguredReader(r, version, name, DefaultReaderConfig)
}

func NewConfiguredReader(r io.Reader, version Version, name string, cfg ReaderConfig) *Reader {
	if cfg.MaxLineLen <= 0 {
		cfg.MaxLineLen = DefaultMaxLineLen
	}
	return &Reader{
		br:      bufio.NewReader(r),
		name:    name,
		version: version,
		cfg:     cfg,
	}
}

func (r *Reader) Next() (Tag, error) {
	if r.peeked != nil {
		t := *r.peeked
		r.peeked = nil
		return t, nil
	}
	return r.read()
}

func (r *Reader) Peek() (Tag, error) {
	if r.peeked != nil {
		return *r.peeked, nil
	}
	t, err := r.read()
	if err != nil {
		return t, err
	}
	r.peeked = &t
	return t, nil
}

func (r *Reader) LineNumber() int {
	return r.line
}

func (r *Reader) Version() Version {
	return r.version
}

// SetVersion changes the declared version, typically after the $ACADVER
// header variable has been read.
func (r *Reader) SetVersion(v Version) {
	r.version = v
}

func (r *Reader) Name() string {
	return r.name
}

func (r *Reader) read() (Tag, error) {
	if r.err != nil {
		return Tag{}, r.err
	}

	codeLine, err := r.readLine()
	if err == io.EOF {
		// EOF is not sticky as a stream error; it is simply returned again.
		return Tag{}, io.EOF
	}
	if err != nil {
		return Tag{}, r.fail(err)
	}
	code, err := strconv.Atoi(strings.TrimSpace(codeLine))
	if err != nil {
		return Tag{}, r.fail(errors.Wrapf(ErrBadGroupCode, "%q", codeLine))
	}

	value, err := r.readLine()
	if err == io.EOF {
		return Tag{}, r.fail(errors.Wrapf(ErrMissingValue, "code %d", code))
	}
	if err != nil {
		return Tag{}, r.fail(err)
	}
	if code == 0 || isNumericCode(code) {
		value = strings.TrimSpace(value)
	}
	return Tag{Code: code, Value: value}, nil
}

func (r *Reader) readLine() (string, error) {
	var sb strings.Builder
	for {
		chunk, isPrefix, err := r.br.ReadLine()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				break
			}
			return "", err
		}
		sb.Write(chunk)
		if sb.Len() > r.cfg.MaxLineLen {
			return "", ErrLineTooLong
		}
		if !isPrefix {
			break
		}
	}
	r.line++
	return sb.String(), nil
}

func (r *Reader) fail(err error) error {
	r.err = &StreamError{
		Name: r.name,
		Line: r.line,
		Err:  err,
	}
	return r.err
}

// isNumericCode reports whether values under code are numbers according to
// the DXF group code ranges. Numeric values may be padded with spaces.
func isNumericCode(code int) bool {
	switch {
	case code >= 10 && code <= 59:
		return true
	case code >= 60 && code <= 99:
		return true
	case code >= 110 && code <= 149:
		return true
	case code >= 160 && code <= 179:
		return true
	case code >= 210 && code <= 239:
		return true
	case code >= 270 && code <= 289:
		return true
	case code >= 370 && code <= 389:
		return true
	case code >= 400 && code <= 409:
		return true
	case code >= 420 && code <= 429:
		return true
	case code >= 440 && code <= 459:
		return true
	case code >= 460 && code <= 469:
		return true
	case code >= 1010 && code <= 1071:
		return true
	}
	return false
}
