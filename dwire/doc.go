/*
Package dwire implements the DXF tagged-value encoding: a line-oriented ASCII
stream of group code / value pairs.

Every tag occupies two lines. The first holds the integer group code, right
aligned in three columns by convention; the second holds the value:

	  0
	POLYLINE
	  8
	0
	 66
	1

Fundamental value kinds:

	- int, int16, int32: decimal integers.
	- Handle: hexadecimal entity identifier. NoHandle (-1) means unassigned
	  and is never written.
	- float64: decimal floating point, written with a fixed number of
	  decimals (6 by default, matching "%f").
	- string: the raw line, without the trailing line terminator.
	- bool: 0 or 1.
	- []string, []float64, []Handle: one element per repeated tag. Decoding
	  into a slice pointer appends a single element.

The easiest way to use this package is through a Reader and a Writer:

	r := dwire.NewReader(f, dwire.R2000, "drawing.dxf")
	tag, err := r.Next()

	w := dwire.NewWriter(out, dwire.WriterOptions{Version: dwire.R2000})
	err := w.WriteTag(dwire.Tag{Code: 8, Value: "0"})

Values are converted with DecodeField and EncodeField:

	var layer string
	err := dwire.DecodeField(tag.Value, &layer)

	value, err := dwire.EncodeField(1.5, dwire.DefaultPrecision)

DecodeField and EncodeField also accept types implementing the Decoder and
Encoder interfaces, which allows composite values to define their own text
representation.
*/
package dwire
