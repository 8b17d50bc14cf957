package store

import (
	"testing"

	"dxf/crypto"
	"dxf/dwire"
	"dxf/entity"
	"dxf/record"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
)

func newLine(h dwire.Handle, layer string) *entity.Line {
	line := entity.NewLine()
	line.Handle = h
	line.Layer = layer
	line.End = entity.Vector{X: 1, Y: 1}
	return line
}

func TestEntities_PutGet(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	opts := dwire.WriterOptions{Version: dwire.R2000}
	line := newLine(0x1a, "WALLS")
	meta, err := PutRecord(db, line, opts)
	require.NoError(t, err)
	require.Equal(t, "LINE", meta.Type)
	require.Equal(t, dwire.Handle(0x1a), meta.Handle)

	hash, err := entity.ContentHash(line, opts)
	require.NoError(t, err)
	require.Equal(t, hash, meta.Hash)

	count, err := GetEntityCount(db)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	stored, err := GetMeta(db, "LINE", 0x1a)
	require.NoError(t, err)
	require.Equal(t, meta.Hash, stored.Hash)
	require.Equal(t, dwire.R2000, stored.Version)
	require.Equal(t, meta.Size, stored.Size)
	require.True(t, meta.StoredAt.Equal(stored.StoredAt))

	rec, _, err := GetRecord(db, "LINE", 0x1a)
	require.NoError(t, err)
	require.True(t, line.Equals(rec))
	require.NoError(t, entity.Free(rec))

	// replacing a record keeps the count
	line.Layer = "DOORS"
	_, err = PutRecord(db, line, opts)
	require.NoError(t, err)
	count, err = GetEntityCount(db)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	rec, _, err = GetRecord(db, "LINE", 0x1a)
	require.NoError(t, err)
	require.Equal(t, "DOORS", rec.(*entity.Line).Layer)

	_, _, err = GetRecord(db, "LINE", 0x99)
	require.Equal(t, leveldb.ErrNotFound, errors.Cause(err))
}

func TestEntities_Corruption(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	_, err := PutRecord(db, newLine(0x2, "0"), dwire.WriterOptions{Version: dwire.R2000})
	require.NoError(t, err)

	tampered, _, err := entity.Marshal(newLine(0x2, "EVIL"), dwire.WriterOptions{Version: dwire.R2000})
	require.NoError(t, err)
	require.NoError(t, db.Put(entitiesPrefix("LINE", "2"), tampered, nil))

	_, _, err = GetRecord(db, "LINE", 0x2)
	require.Equal(t, crypto.ErrHashMismatch, errors.Cause(err))

	require.NoError(t, db.Put(metaPrefix("LINE", "2"), []byte("{bad"), nil))
	require.NotPanics(t, func() {
		_, err = GetMeta(db, "LINE", 0x2)
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "corrupt record meta LINE 2")
	_, _, err = GetRecord(db, "LINE", 0x2)
	require.Error(t, err)
}

func TestEntities_Rejects(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	opts := dwire.WriterOptions{Version: dwire.R2000}
	_, err := PutRecord(db, newLine(dwire.NoHandle, "0"), opts)
	require.Equal(t, ErrNoHandle, errors.Cause(err))

	var nilLine *entity.Line
	_, err = PutRecord(db, nilLine, opts)
	require.Equal(t, record.ErrNilRecord, errors.Cause(err))

	// degenerate lines fail to encode
	bad := entity.NewLine()
	bad.Handle = 0x3
	_, err = PutRecord(db, bad, opts)
	require.True(t, record.IsRangeError(err))

	count, err := GetEntityCount(db)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestEntities_ListDeleteTruncate(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	opts := dwire.WriterOptions{Version: dwire.R2000}
	for _, h := range []dwire.Handle{0x30, 0x4, 0x1f} {
		_, err := PutRecord(db, newLine(h, "0"), opts)
		require.NoError(t, err)
	}
	pl := entity.NewPolyline()
	pl.Handle = 0x50
	require.NoError(t, pl.AppendVertex(entity.NewVertex()))
	_, err := PutRecord(db, pl, opts)
	require.NoError(t, err)

	handles, err := ListHandles(db, "LINE")
	require.NoError(t, err)
	require.Equal(t, []dwire.Handle{0x4, 0x1f, 0x30}, handles)

	stream, err := StreamMeta(db, "")
	require.NoError(t, err)
	var seen int
	for {
		meta, err := stream.Next()
		require.NoError(t, err)
		if meta == nil {
			break
		}
		seen++
	}
	require.NoError(t, stream.Close())
	require.Equal(t, 4, seen)

	_, err = StreamMeta(db, "LINE/4")
	require.Error(t, err)

	rec, _, err := GetRecord(db, "POLYLINE", 0x50)
	require.NoError(t, err)
	require.Equal(t, 1, rec.(*entity.Polyline).VertexCount())
	require.NoError(t, entity.Free(rec))

	require.NoError(t, DeleteRecord(db, "LINE", 0x1f))
	require.NoError(t, DeleteRecord(db, "LINE", 0x1f))
	handles, err = ListHandles(db, "LINE")
	require.NoError(t, err)
	require.Equal(t, []dwire.Handle{0x4, 0x30}, handles)
	count, err := GetEntityCount(db)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	require.NoError(t, TruncateEntityStore(db))
	count, err = GetEntityCount(db)
	require.NoError(t, err)
	require.Equal(t, 0, count)
	handles, err = ListHandles(db, "LINE")
	require.NoError(t, err)
	require.Empty(t, handles)
}
