package dwire

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// Encoder is implemented by values with their own text form.
type Encoder interface {
	Encode(precision int) (string, error)
}

// Decoder is implemented by values that parse their own text form.
type Decoder interface {
	Decode(raw string) error
}

// EncodeField returns the value line for item. Floats use precision
// decimals, or the shortest round-tripping form for ShortestPrecision.
func EncodeField(item interface{}, precision int) (string, error) {
	switch it := item.(type) {
	case Encoder:
		return it.Encode(precision)
	case string:
		return it, nil
	case int:
		return strconv.Itoa(it), nil
	case int16:
		return strconv.FormatInt(int64(it), 10), nil
	case int32:
		return strconv.FormatInt(int64(it), 10), nil
	case int64:
		return strconv.FormatInt(it, 10), nil
	case bool:
		if it {
			return "1", nil
		}
		return "0", nil
	case float64:
		return formatFloat(it, precision)
	case Handle:
		if !it.Valid() {
			return "", errors.New("cannot encode an unassigned handle")
		}
		return it.String(), nil
	default:
		return "", errors.Errorf("type %T cannot be encoded", item)
	}
}

func formatFloat(v float64, precision int) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", errors.Errorf("cannot encode non-finite float %v", v)
	}
	if precision < 0 {
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return strconv.FormatFloat(v, 'f', precision, 64), nil
}
