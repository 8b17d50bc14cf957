package store

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
)

func TestWithTx(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	require.NoError(t, WithTx(db, func(tx *leveldb.Transaction) error {
		return tx.Put([]byte("a"), []byte("1"), nil)
	}))
	val, err := db.Get([]byte("a"), nil)
	require.NoError(t, err)
	require.Equal(t, "1", string(val))

	failure := errors.New("nope")
	err = WithTx(db, func(tx *leveldb.Transaction) error {
		if err := tx.Put([]byte("b"), []byte("2"), nil); err != nil {
			return err
		}
		return failure
	})
	require.Equal(t, failure, err)
	has, err := db.Has([]byte("b"), nil)
	require.NoError(t, err)
	require.False(t, has)

	require.Panics(t, func() {
		_ = WithTx(db, func(tx *leveldb.Transaction) error {
			panic("boom")
		})
	})
	require.NoError(t, WithTx(db, func(tx *leveldb.Transaction) error {
		return nil
	}))
}
