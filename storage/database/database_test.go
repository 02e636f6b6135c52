// Copyright 2019 The meridian Authors
// This file is part of the meridian library.
//
// The meridian library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The meridian library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the meridian library. If not, see <http://www.gnu.org/licenses/>.

package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDatabases(t *testing.T) map[string]Database {
	t.Helper()
	ldb, err := NewLDBDatabase(t.TempDir(), 16, 16)
	require.NoError(t, err)
	t.Cleanup(ldb.Close)
	return map[string]Database{
		"memdb":   NewMemDatabase(),
		"leveldb": ldb,
	}
}

func TestDatabasePutGetDelete(t *testing.T) {
	for name, db := range testDatabases(t) {
		t.Run(name, func(t *testing.T) {
			_, err := db.Get([]byte("missing"))
			assert.Equal(t, ErrKeyNotFound, err)

			require.NoError(t, db.Put([]byte("k"), []byte("v")))
			ok, err := db.Has([]byte("k"))
			require.NoError(t, err)
			assert.True(t, ok)

			value, err := db.Get([]byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), value)

			require.NoError(t, db.Delete([]byte("k")))
			ok, err = db.Has([]byte("k"))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestDatabaseIteratorIsSorted(t *testing.T) {
	for name, db := range testDatabases(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.Put([]byte("b"), []byte("2")))
			require.NoError(t, db.Put([]byte("a"), []byte("1")))
			require.NoError(t, db.Put([]byte("c"), []byte("3")))

			it := db.NewIterator()
			defer it.Release()
			keys := []string{}
			for it.Next() {
				keys = append(keys, string(it.Key()))
			}
			assert.Equal(t, []string{"a", "b", "c"}, keys)
		})
	}
}

func TestDatabaseBatchWrite(t *testing.T) {
	for name, db := range testDatabases(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.Put([]byte("gone"), []byte("x")))

			batch := db.NewBatch()
			require.NoError(t, batch.Put([]byte("k1"), []byte("v1")))
			require.NoError(t, batch.Put([]byte("k2"), []byte("v2")))
			require.NoError(t, batch.Delete([]byte("gone")))

			// Nothing lands before Write.
			_, err := db.Get([]byte("k1"))
			assert.Equal(t, ErrKeyNotFound, err)

			require.NoError(t, batch.Write())
			value, err := db.Get([]byte("k2"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), value)
			_, err = db.Get([]byte("gone"))
			assert.Equal(t, ErrKeyNotFound, err)
		})
	}
}
