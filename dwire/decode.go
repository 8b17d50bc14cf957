package dwire

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DecodeFields decodes each value into the item at the same position. Items
// must be pointer types.
func DecodeFields(values []string, items ...interface{}) error {
	if len(values) != len(items) {
		return errors.Errorf("have %d values for %d fields", len(values), len(items))
	}
	for i, item := range items {
		if err := DecodeField(values[i], item); err != nil {
			return err
		}
	}
	return nil
}

// DecodeField decodes raw into item, which must be a pointer type. Slice
// pointers receive one appended element per call. On error the item is left
// unchanged.
func DecodeField(raw string, item interface{}) error {
	var err error
	switch it := item.(type) {
	case Decoder:
		err = it.Decode(raw)
	case *string:
		*it = raw
	case *int:
		var v int64
		if v, err = parseInt(raw, strconv.IntSize); err == nil {
			*it = int(v)
		}
	case *int16:
		var v int64
		if v, err = parseInt(raw, 16); err == nil {
			*it = int16(v)
		}
	case *int32:
		var v int64
		if v, err = parseInt(raw, 32); err == nil {
			*it = int32(v)
		}
	case *int64:
		var v int64
		if v, err = parseInt(raw, 64); err == nil {
			*it = v
		}
	case *bool:
		var v int64
		v, err = parseInt(raw, 16)
		if err != nil {
			return err
		}
		if v != 0 && v != 1 {
			return errors.Errorf("invalid boolean value: %d", v)
		}
		*it = v == 1
	case *float64:
		var v float64
		if v, err = parseFloat(raw); err == nil {
			*it = v
		}
	case *Handle:
		var v Handle
		if v, err = parseHandle(raw); err == nil {
			*it = v
		}
	case *[]string:
		*it = append(*it, raw)
	case *[]float64:
		var v float64
		if v, err = parseFloat(raw); err == nil {
			*it = append(*it, v)
		}
	case *[]Handle:
		var v Handle
		if v, err = parseHandle(raw); err == nil {
			*it = append(*it, v)
		}
	default:
		err = errors.Errorf("type %T cannot be decoded", item)
	}
	return err
}

func parseInt(raw string, bits int) (int64, error) {
	s := strings.TrimSpace(raw)
	v, err := strconv.ParseInt(s, 10, bits)
	if err != nil {
		return 0, errors.Errorf("invalid integer value: %q", raw)
	}
	return v, nil
}

func parseFloat(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Errorf("invalid float value: %q", raw)
	}
	return v, nil
}

func parseHandle(raw string) (Handle, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return NoHandle, errors.New("empty handle")
	}
	v, err := strconv.ParseUint(s, 16, 63)
	if err != nil {
		return NoHandle, errors.Errorf("invalid handle: %q", raw)
	}
	return Handle(v), nil
}
