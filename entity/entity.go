package entity

import (
	"io"

	"dxf/chain"
	"dxf/dwire"
	"dxf/log"
	"dxf/record"

	"github.com/pkg/errors"
)

// ErrUnsupported is returned by Decode for an entity type without a schema.
// The entity's tags have been skipped and decoding may continue.
var ErrUnsupported = errors.New("unsupported entity type")

// Record is a decoded entity. Nested sub-records, such as vertices and
// cells, are reached through their owner.
type Record interface {
	chain.Node
	Type() string
	ID() dwire.Handle
	Encode(w dwire.TagWriter) (record.Diagnostics, error)
	Equals(other Record) bool
}

type decodeFunc func(dec *record.Decoder) (Record, error)

var registry = map[string]decodeFunc{
	"POLYLINE": func(dec *record.Decoder) (Record, error) {
		p, err := decodePolyline(dec, nil)
		if err != nil {
			return nil, err
		}
		return p, nil
	},
	"ACAD_TABLE": func(dec *record.Decoder) (Record, error) {
		t, err := decodeTable(dec, nil)
		if err != nil {
			return nil, err
		}
		return t, nil
	},
	"LINE": func(dec *record.Decoder) (Record, error) {
		l, err := decodeLine(dec, nil)
		if err != nil {
			return nil, err
		}
		return l, nil
	},
}

var managers = map[string]*chain.Manager{
	"POLYLINE":   Polylines,
	"ACAD_TABLE": Tables,
	"LINE":       Lines,
}

var lgr = log.WithModule("entity")

// Supported reports whether typ has a schema.
func Supported(typ string) bool {
	_, ok := registry[typ]
	return ok
}

// Decode reads the next entity, starting at its "0 TYPE" announcement. It
// returns io.EOF at the end of input.
func Decode(r dwire.TagReader) (Record, record.Diagnostics, error) {
	dec := record.NewDecoder(r, "")
	rec, err := decode(dec)
	return rec, dec.Diagnostics(), err
}

func decode(dec *record.Decoder) (Record, error) {
	tag, err := dec.Next()
	if err != nil {
		return nil, err
	}
	if !tag.IsTerminator() {
		return nil, dec.Fail(errors.Errorf("expected an entity announcement, got %s", tag))
	}

	fn, ok := registry[tag.Value]
	if !ok {
		dec.SetRecord(tag.Value)
		if err := skip(dec); err != nil {
			return nil, err
		}
		return nil, errors.Wrap(ErrUnsupported, tag.Value)
	}
	dec.SetRecord(tag.Value)
	return fn(dec)
}

// skip consumes tags up to the next terminator.
func skip(dec *record.Decoder) error {
	n := 0
	for {
		tag, err := dec.Peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if tag.IsTerminator() {
			break
		}
		if _, err := dec.Next(); err != nil {
			return err
		}
		n++
	}
	dec.Warnf(0, "unsupported entity skipped, %d tags discarded", n)
	return nil
}

type versionSetter interface {
	SetVersion(v dwire.Version)
}

// Document is the result of decoding a whole stream.
type Document struct {
	// Version is the reader's version once decoding stopped, which reflects
	// any $ACADVER found in the header.
	Version     dwire.Version
	Records     []Record
	Diagnostics record.Diagnostics
	// Warnings holds the number of diagnostics raised while decoding each
	// record, indexed like Records.
	Warnings []int
}

// Free releases every record of the document.
func (d *Document) Free() {
	for _, rec := range d.Records {
		if err := Free(rec); err != nil {
			lgr.Warn("error freeing record", "type", rec.Type(), "err", err)
		}
	}
	d.Records = nil
	d.Warnings = nil
}

// DecodeAll reads every supported entity up to the end of input or the EOF
// marker. SECTION and ENDSEC markers are accepted. In a HEADER section the
// $ACADVER variable switches the reader's version when the reader allows
// it; every other section except ENTITIES is skipped. On error the records
// decoded so far are freed and nil is returned.
func DecodeAll(r dwire.TagReader) ([]Record, record.Diagnostics, error) {
	doc, err := DecodeDocument(r)
	if err != nil {
		return nil, doc.Diagnostics, err
	}
	return doc.Records, doc.Diagnostics, nil
}

// DecodeDocument is DecodeAll with per-record warning counts. The returned
// document is never nil; on error it holds only the diagnostics.
func DecodeDocument(r dwire.TagReader) (*Document, error) {
	dec := record.NewDecoder(r, "")
	doc := new(Document)

	done := func(err error) (*Document, error) {
		doc.Version = dec.Version()
		doc.Diagnostics = dec.Diagnostics()
		if err != nil {
			doc.Free()
		}
		return doc, err
	}

	for {
		tag, err := dec.Peek()
		if err == io.EOF {
			return done(nil)
		}
		if err != nil {
			return done(err)
		}

		switch {
		case tag.IsTerminator() && tag.Value == "EOF":
			if _, err := dec.Next(); err != nil {
				return done(err)
			}
			return done(nil)
		case tag.IsTerminator() && tag.Value == "ENDSEC":
			if _, err := dec.Next(); err != nil {
				return done(err)
			}
		case tag.IsTerminator() && tag.Value == "SECTION":
			if err := section(dec); err != nil {
				return done(err)
			}
		case !tag.IsTerminator():
			if _, err := dec.Next(); err != nil {
				return done(err)
			}
			if tag.Code == 999 {
				lgr.Debug("comment", "line", r.LineNumber(), "text", tag.Value)
				continue
			}
			dec.SetRecord("")
			dec.Warnf(tag.Code, "tag outside of an entity, value %q discarded", tag.Value)
		default:
			before := len(dec.Diagnostics())
			rec, err := decode(dec)
			if errors.Cause(err) == ErrUnsupported {
				lgr.Debug("skipped entity", "type", tag.Value, "line", r.LineNumber())
				continue
			}
			if err != nil {
				return done(err)
			}
			doc.Records = append(doc.Records, rec)
			doc.Warnings = append(doc.Warnings, len(dec.Diagnostics())-before)
		}
	}
}

func section(dec *record.Decoder) error {
	if _, err := dec.Next(); err != nil {
		return err
	}
	dec.SetRecord("SECTION")
	tag, err := dec.Peek()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	if tag.Code != 2 {
		dec.Warnf(tag.Code, "section without a name")
		return nil
	}
	if _, err := dec.Next(); err != nil {
		return err
	}

	switch tag.Value {
	case "ENTITIES":
		return nil
	case "HEADER":
		return header(dec)
	default:
		lgr.Debug("skipping section", "name", tag.Value)
		return skipSection(dec)
	}
}

// header reads header variables until ENDSEC, which is left unread.
func header(dec *record.Decoder) error {
	var variable string
	for {
		tag, err := dec.Peek()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if tag.IsTerminator() {
			return nil
		}
		if _, err := dec.Next(); err != nil {
			return err
		}
		if tag.Code == 9 {
			variable = tag.Value
			continue
		}
		if variable != "$ACADVER" || tag.Code != 1 {
			continue
		}

		v, err := dwire.ParseVersion(tag.Value)
		if err != nil {
			dec.Warnf(1, "unknown $ACADVER %q, keeping %s", tag.Value, dec.Version())
			continue
		}
		vs, ok := dec.Reader().(versionSetter)
		if !ok {
			dec.Warnf(1, "reader version is fixed, ignoring $ACADVER %s", v)
			continue
		}
		vs.SetVersion(v)
		lgr.Debug("switched version", "version", v)
	}
}

// skipSection consumes everything up to ENDSEC, which is left unread.
func skipSection(dec *record.Decoder) error {
	for {
		tag, err := dec.Peek()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if tag.IsTerminator() && (tag.Value == "ENDSEC" || tag.Value == "EOF") {
			return nil
		}
		if _, err := dec.Next(); err != nil {
			return err
		}
	}
}

// EncodeAll encodes recs in order. Each record is flushed on its own, so a
// failing record leaves the ones before it written.
func EncodeAll(w dwire.TagWriter, recs []Record) (record.Diagnostics, error) {
	var diags record.Diagnostics
	for i, rec := range recs {
		if isNil(rec) {
			return diags, errors.Wrapf(record.ErrNilRecord, "record %d", i)
		}
		d, err := rec.Encode(w)
		diags = append(diags, d...)
		if err != nil {
			return diags, errors.Wrapf(err, "record %d (%s)", i, rec.Type())
		}
	}
	return diags, nil
}

// WriteDocument writes a minimal document: an optional 999 comment, a
// HEADER section declaring the writer's version, the ENTITIES section and
// the EOF marker.
func WriteDocument(w dwire.TagWriter, recs []Record, comment string) (record.Diagnostics, error) {
	var tags []dwire.Tag
	if comment != "" {
		tags = append(tags, dwire.Tag{Code: 999, Value: comment})
	}
	tags = append(tags,
		dwire.Tag{Code: 0, Value: "SECTION"},
		dwire.Tag{Code: 2, Value: "HEADER"},
		dwire.Tag{Code: 9, Value: "$ACADVER"},
		dwire.Tag{Code: 1, Value: w.Options().Version.ACADVer()},
		dwire.Tag{Code: 0, Value: "ENDSEC"},
		dwire.Tag{Code: 0, Value: "SECTION"},
		dwire.Tag{Code: 2, Value: "ENTITIES"},
	)
	for _, t := range tags {
		if err := w.WriteTag(t); err != nil {
			return nil, err
		}
	}

	diags, err := EncodeAll(w, recs)
	if err != nil {
		return diags, err
	}

	for _, t := range []dwire.Tag{{Code: 0, Value: "ENDSEC"}, {Code: 0, Value: "EOF"}} {
		if err := w.WriteTag(t); err != nil {
			return diags, err
		}
	}
	return diags, nil
}

// Free releases rec together with the chain it owns. rec must not be
// linked to a successor.
func Free(rec Record) error {
	if isNil(rec) {
		return chain.ErrNilNode
	}
	m, ok := managers[rec.Type()]
	if !ok {
		return errors.Wrap(ErrUnsupported, rec.Type())
	}
	if rec.Successor() != nil {
		return errors.Wrap(chain.ErrNotIsolated, rec.Type())
	}
	_, err := m.FreeChain(rec)
	return err
}

// Children returns the number of sub-records rec owns.
func Children(rec Record) int {
	if isNil(rec) {
		return 0
	}
	o, ok := rec.(chain.Owner)
	if !ok || o.Owned() == nil {
		return 0
	}
	return chain.Len(o.Owned())
}

// Layer returns the layer rec is drawn on.
func Layer(rec Record) string {
	if isNil(rec) {
		return ""
	}
	if c, ok := rec.(interface{ common() *Common }); ok {
		return c.common().Layer
	}
	return ""
}

func isNil(rec Record) bool {
	switch r := rec.(type) {
	case nil:
		return true
	case *Polyline:
		return r == nil
	case *Table:
		return r == nil
	case *Line:
		return r == nil
	}
	return false
}
