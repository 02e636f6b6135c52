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
	metrics "github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// OpenFileLimit caps the number of files leveldb keeps open.
var OpenFileLimit = 64

type levelDB struct {
	fn string      // filename for reporting
	db *leveldb.DB // LevelDB instance

	getTimer   metrics.Timer // Timer for measuring time spent reading
	putTimer   metrics.Timer // Timer for measuring time spent writing
	batchMeter metrics.Meter // Meter for measuring the batched data written

	logger *logrus.Entry // Contextual logger tracking the database path
}

func getLDBOptions(ldbCacheSize, numHandles int) *opt.Options {
	return &opt.Options{
		OpenFilesCacheCapacity: numHandles,
		BlockCacheCapacity:     ldbCacheSize / 2 * opt.MiB,
		WriteBuffer:            ldbCacheSize / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	}
}

// NewLDBDatabase opens (or creates) a leveldb backed database at file.
func NewLDBDatabase(file string, ldbCacheSize, numHandles int) (*levelDB, error) {
	localLogger := logger.WithField("database", file)

	// Ensure we have some minimal caching and file guarantees
	if ldbCacheSize < 16 {
		ldbCacheSize = 16
	}
	if numHandles < 16 {
		numHandles = 16
	}
	localLogger.WithFields(logrus.Fields{"writeBufferSize": ldbCacheSize, "numHandles": numHandles}).
		Info("Allocated LevelDB with write buffer and file handles")

	// Open the db and recover any potential corruptions
	db, err := leveldb.OpenFile(file, getLDBOptions(ldbCacheSize, numHandles))
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(file, nil)
	}
	// (Re)check for errors and abort if opening of the db failed
	if err != nil {
		return nil, err
	}
	return &levelDB{
		fn:         file,
		db:         db,
		getTimer:   metrics.GetOrRegisterTimer("db/leveldb/get", nil),
		putTimer:   metrics.GetOrRegisterTimer("db/leveldb/put", nil),
		batchMeter: metrics.GetOrRegisterMeter("db/leveldb/batchwrite", nil),
		logger:     localLogger,
	}, nil
}

func (db *levelDB) Type() DBType {
	return LevelDB
}

// Path returns the path to the database directory.
func (db *levelDB) Path() string {
	return db.fn
}

// Put writes the given key / value to the database
func (db *levelDB) Put(key []byte, value []byte) error {
	if db.putTimer != nil {
		defer db.putTimer.UpdateSince(nowForMetrics())
	}
	return db.db.Put(key, value, nil)
}

func (db *levelDB) Has(key []byte) (bool, error) {
	return db.db.Has(key, nil)
}

// Get returns the given key if it's present.
func (db *levelDB) Get(key []byte) ([]byte, error) {
	if db.getTimer != nil {
		defer db.getTimer.UpdateSince(nowForMetrics())
	}
	dat, err := db.db.Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return dat, nil
}

// Delete deletes the key from the database
func (db *levelDB) Delete(key []byte) error {
	return db.db.Delete(key, nil)
}

func (db *levelDB) NewIterator() Iterator {
	return &ldbIterator{iter: db.db.NewIterator(nil, nil)}
}

func (db *levelDB) Close() {
	if err := db.db.Close(); err != nil {
		db.logger.WithError(err).Error("Failed to close database")
		return
	}
	db.logger.Info("Database closed")
}

func (db *levelDB) NewBatch() Batch {
	return &ldbBatch{db: db.db, b: new(leveldb.Batch), meter: db.batchMeter}
}

type ldbBatch struct {
	db    *leveldb.DB
	b     *leveldb.Batch
	meter metrics.Meter
	size  int
}

func (b *ldbBatch) Put(key, value []byte) error {
	b.b.Put(key, value)
	b.size += len(value)
	return nil
}

func (b *ldbBatch) Delete(key []byte) error {
	b.b.Delete(key)
	b.size += len(key)
	return nil
}

func (b *ldbBatch) Write() error {
	if b.meter != nil {
		b.meter.Mark(int64(b.size))
	}
	return b.db.Write(b.b, nil)
}

func (b *ldbBatch) Reset() {
	b.b.Reset()
	b.size = 0
}

type ldbIterator struct {
	iter iterator.Iterator
}

func (it *ldbIterator) Next() bool { return it.iter.Next() }

// Key and Value return copies so callers may retain them across Next.
func (it *ldbIterator) Key() []byte {
	return copyBytes(it.iter.Key())
}

func (it *ldbIterator) Value() []byte {
	return copyBytes(it.iter.Value())
}

func (it *ldbIterator) Release() { it.iter.Release() }

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
