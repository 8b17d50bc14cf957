package store

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"dxf/crypto"
	"dxf/dwire"
	"dxf/entity"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var ErrNoHandle = errors.New("record has no handle")

// Meta describes a stored record: the version its bytes were encoded with
// and their content hash.
type Meta struct {
	Type     string
	Handle   dwire.Handle
	Version  dwire.Version
	Hash     crypto.Hash
	Size     int
	StoredAt time.Time
}

func (m *Meta) MarshalJSON() ([]byte, error) {
	out := &struct {
		Type     string    `json:"type"`
		Handle   string    `json:"handle"`
		Version  string    `json:"version"`
		Hash     string    `json:"hash"`
		Size     int       `json:"size"`
		StoredAt time.Time `json:"stored_at"`
	}{
		m.Type,
		m.Handle.String(),
		m.Version.String(),
		m.Hash.String(),
		m.Size,
		m.StoredAt,
	}
	return json.Marshal(out)
}

func (m *Meta) UnmarshalJSON(b []byte) error {
	in := &struct {
		Type     string    `json:"type"`
		Handle   string    `json:"handle"`
		Version  string    `json:"version"`
		Hash     string    `json:"hash"`
		Size     int       `json:"size"`
		StoredAt time.Time `json:"stored_at"`
	}{}
	if err := json.Unmarshal(b, in); err != nil {
		return err
	}
	h, err := dwire.ParseHandle(in.Handle)
	if err != nil {
		return err
	}
	v, err := dwire.ParseVersion(in.Version)
	if err != nil {
		return err
	}
	hash, err := crypto.NewHashFromHex(in.Hash)
	if err != nil {
		return err
	}

	m.Type = in.Type
	m.Handle = h
	m.Version = v
	m.Hash = hash
	m.Size = in.Size
	m.StoredAt = in.StoredAt
	return nil
}

var (
	entitiesPrefix = Prefixer("entities")
	metaPrefix     = Prefixer("meta")
	entityCountKey = Prefixer("counts")("entities")
)

func GetEntityCount(db *leveldb.DB) (int, error) {
	res, err := db.Get(entityCountKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "error getting entity count")
	}
	return mustDecodeInt(res), nil
}

var countMu sync.Mutex

func addEntityCount(tx *leveldb.Transaction, delta int) error {
	countMu.Lock()
	defer countMu.Unlock()
	count, err := tx.Get(entityCountKey, nil)
	if err != nil && !errors.Is(err, leveldb.ErrNotFound) {
		return errors.Wrap(err, "error getting entity count")
	}
	if err := tx.Put(entityCountKey, mustEncodeInt(mustDecodeInt(count)+delta), nil); err != nil {
		return errors.Wrap(err, "error putting entity count")
	}
	return nil
}

// PutRecord encodes rec with opts and stores it under its type and handle,
// replacing any record stored there before.
func PutRecord(db *leveldb.DB, rec entity.Record, opts dwire.WriterOptions) (*Meta, error) {
	var meta *Meta
	err := WithTx(db, func(tx *leveldb.Transaction) error {
		m, err := PutRecordTx(tx, rec, opts)
		meta = m
		return err
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

func PutRecordTx(tx *leveldb.Transaction, rec entity.Record, opts dwire.WriterOptions) (*Meta, error) {
	data, diags, err := entity.Marshal(rec, opts)
	if err != nil {
		return nil, errors.Wrap(err, "error encoding record")
	}
	if !rec.ID().Valid() {
		return nil, errors.Wrap(ErrNoHandle, rec.Type())
	}
	for _, d := range diags {
		logger.Debug("encoded with warning", "type", rec.Type(), "handle", rec.ID(), "warning", d.String())
	}

	dataKey, metaKey := recordKeys(rec.Type(), rec.ID())
	exists, err := tx.Has(dataKey, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error checking record")
	}
	meta := &Meta{
		Type:     rec.Type(),
		Handle:   rec.ID(),
		Version:  opts.Version,
		Hash:     crypto.Blake2B256(data),
		Size:     len(data),
		StoredAt: time.Now(),
	}
	if err := tx.Put(dataKey, data, nil); err != nil {
		return nil, errors.Wrap(err, "error inserting record")
	}
	if err := tx.Put(metaKey, mustMarshalJSON(meta), nil); err != nil {
		return nil, errors.Wrap(err, "error inserting record meta")
	}
	if !exists {
		if err := addEntityCount(tx, 1); err != nil {
			return nil, err
		}
	}
	return meta, nil
}

func GetMeta(db *leveldb.DB, typ string, h dwire.Handle) (*Meta, error) {
	_, metaKey := recordKeys(typ, h)
	res, err := db.Get(metaKey, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error getting record meta")
	}
	meta := new(Meta)
	if err := json.Unmarshal(res, meta); err != nil {
		return nil, errors.Wrapf(err, "corrupt record meta %s %s", typ, h)
	}
	return meta, nil
}

// GetRecord loads and decodes a stored record after checking its content
// hash. The caller owns the returned record and must free it.
func GetRecord(db *leveldb.DB, typ string, h dwire.Handle) (entity.Record, *Meta, error) {
	meta, err := GetMeta(db, typ, h)
	if err != nil {
		return nil, nil, err
	}
	dataKey, _ := recordKeys(typ, h)
	data, err := db.Get(dataKey, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error getting record")
	}
	if err := meta.Hash.Verify(data); err != nil {
		return nil, nil, errors.Wrapf(err, "corrupt record %s %s", typ, h)
	}
	rec, _, err := entity.Unmarshal(data, meta.Version)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error decoding record")
	}
	return rec, meta, nil
}

// DeleteRecord removes a record and its metadata. Deleting a missing record
// is not an error.
func DeleteRecord(db *leveldb.DB, typ string, h dwire.Handle) error {
	return WithTx(db, func(tx *leveldb.Transaction) error {
		return DeleteRecordTx(tx, typ, h)
	})
}

func DeleteRecordTx(tx *leveldb.Transaction, typ string, h dwire.Handle) error {
	dataKey, metaKey := recordKeys(typ, h)
	exists, err := tx.Has(dataKey, nil)
	if err != nil {
		return errors.Wrap(err, "error checking record")
	}
	if !exists {
		return nil
	}
	if err := tx.Delete(dataKey, nil); err != nil {
		return errors.Wrap(err, "error deleting record")
	}
	if err := tx.Delete(metaKey, nil); err != nil {
		return errors.Wrap(err, "error deleting record meta")
	}
	return addEntityCount(tx, -1)
}

// ListHandles returns the handles stored for typ in ascending order.
func ListHandles(db *leveldb.DB, typ string) ([]dwire.Handle, error) {
	stream, err := StreamMeta(db, typ)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var handles []dwire.Handle
	for {
		meta, err := stream.Next()
		if err != nil {
			return nil, err
		}
		if meta == nil {
			break
		}
		handles = append(handles, meta.Handle)
	}
	sort.Slice(handles, func(i, j int) bool {
		return handles[i] < handles[j]
	})
	return handles, nil
}

type MetaStream struct {
	iter iterator.Iterator
}

func (ms *MetaStream) Next() (*Meta, error) {
	if !ms.iter.Next() {
		return nil, nil
	}

	meta := new(Meta)
	if err := json.Unmarshal(ms.iter.Value(), meta); err != nil {
		return nil, errors.Wrapf(err, "error decoding meta at %s", ms.iter.Key())
	}
	return meta, nil
}

func (ms *MetaStream) Close() error {
	ms.iter.Release()
	return ms.iter.Error()
}

// StreamMeta iterates the metadata of every record of typ, or of every
// record when typ is empty.
func StreamMeta(db *leveldb.DB, typ string) (*MetaStream, error) {
	prefix := metaPrefix("")
	if typ != "" {
		if strings.Contains(typ, "/") {
			return nil, errors.Errorf("invalid entity type %q", typ)
		}
		prefix = metaPrefix(typ, "")
	}
	return &MetaStream{
		iter: db.NewIterator(util.BytesPrefix(prefix), nil),
	}, nil
}

func TruncateEntityStore(db *leveldb.DB) error {
	err := WithTx(db, func(tx *leveldb.Transaction) error {
		for _, prefix := range [][]byte{entitiesPrefix(""), metaPrefix("")} {
			iter := tx.NewIterator(util.BytesPrefix(prefix), nil)
			for iter.Next() {
				if err := tx.Delete(iter.Key(), nil); err != nil {
					iter.Release()
					return errors.Wrap(err, "error deleting entity store key")
				}
			}
			iter.Release()
		}
		return tx.Delete(entityCountKey, nil)
	})
	if err != nil {
		return errors.Wrap(err, "error truncating entity store")
	}
	return nil
}
