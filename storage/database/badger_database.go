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
	"fmt"
	"os"

	"github.com/dgraph-io/badger"
	"github.com/sirupsen/logrus"
)

type badgerDB struct {
	fn string // filename for reporting
	db *badger.DB

	logger *logrus.Entry // Contextual logger tracking the database path
}

func getBadgerDBDefaultOption(dbDir string) badger.Options {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil
	return opts
}

// NewBadgerDatabase opens (or creates) a badger backed database at dbDir.
func NewBadgerDatabase(dbDir string) (*badgerDB, error) {
	localLogger := logger.WithField("dbDir", dbDir)

	if fi, err := os.Stat(dbDir); err == nil {
		if !fi.IsDir() {
			return nil, fmt.Errorf("failed to make badgerDB while checking dbDir. Given dbDir is not a directory. dbDir: %v", dbDir)
		}
	} else if os.IsNotExist(err) {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to make badgerDB while making dbDir. dbDir: %v, err: %v", dbDir, err)
		}
	} else {
		return nil, fmt.Errorf("failed to make badgerDB while checking dbDir. dbDir: %v, err: %v", dbDir, err)
	}

	db, err := badger.Open(getBadgerDBDefaultOption(dbDir))
	if err != nil {
		return nil, fmt.Errorf("failed to make badgerDB while opening the DB. dbDir: %v, err: %v", dbDir, err)
	}

	return &badgerDB{
		fn:     dbDir,
		db:     db,
		logger: localLogger,
	}, nil
}

func (bg *badgerDB) Type() DBType {
	return BadgerDB
}

// Path returns the path to the database directory.
func (bg *badgerDB) Path() string {
	return bg.fn
}

// Put inserts the given key and value pair to the database.
func (bg *badgerDB) Put(key []byte, value []byte) error {
	txn := bg.db.NewTransaction(true)
	defer txn.Discard()
	if err := txn.Set(key, value); err != nil {
		return err
	}
	return txn.Commit()
}

// Has returns true if the corresponding value to the given key exists.
func (bg *badgerDB) Has(key []byte) (bool, error) {
	txn := bg.db.NewTransaction(false)
	defer txn.Discard()
	_, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Get returns the corresponding value to the given key if exists.
func (bg *badgerDB) Get(key []byte) ([]byte, error) {
	txn := bg.db.NewTransaction(false)
	defer txn.Discard()
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Delete deletes the key from the database.
func (bg *badgerDB) Delete(key []byte) error {
	txn := bg.db.NewTransaction(true)
	defer txn.Discard()
	if err := txn.Delete(key); err != nil {
		return err
	}
	return txn.Commit()
}

func (bg *badgerDB) NewIterator() Iterator {
	txn := bg.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	return &badgerIterator{txn: txn, iter: txn.NewIterator(opts), first: true}
}

func (bg *badgerDB) Close() {
	if err := bg.db.Close(); err != nil {
		bg.logger.WithError(err).Error("Failed to close database")
		return
	}
	bg.logger.Info("Database closed")
}

func (bg *badgerDB) NewBatch() Batch {
	return &badgerBatch{db: bg.db, txn: bg.db.NewTransaction(true)}
}

type badgerBatch struct {
	db  *badger.DB
	txn *badger.Txn
}

func (b *badgerBatch) Put(key, value []byte) error {
	return b.txn.Set(key, value)
}

func (b *badgerBatch) Delete(key []byte) error {
	return b.txn.Delete(key)
}

func (b *badgerBatch) Write() error {
	return b.txn.Commit()
}

func (b *badgerBatch) Reset() {
	b.txn.Discard()
	b.txn = b.db.NewTransaction(true)
}

type badgerIterator struct {
	txn   *badger.Txn
	iter  *badger.Iterator
	first bool
}

func (it *badgerIterator) Next() bool {
	if it.first {
		it.iter.Rewind()
		it.first = false
	} else {
		it.iter.Next()
	}
	return it.iter.Valid()
}

func (it *badgerIterator) Key() []byte {
	return it.iter.Item().KeyCopy(nil)
}

func (it *badgerIterator) Value() []byte {
	val, err := it.iter.Item().ValueCopy(nil)
	if err != nil {
		return nil
	}
	return val
}

func (it *badgerIterator) Release() {
	it.iter.Close()
	it.txn.Discard()
}
