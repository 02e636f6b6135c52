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
	"sort"
	"sync"
)

// MemDatabase is a map-backed Database for tests and one-shot tools.
type MemDatabase struct {
	db   map[string][]byte
	lock sync.RWMutex
}

func NewMemDatabase() *MemDatabase {
	return &MemDatabase{
		db: make(map[string][]byte),
	}
}

func (db *MemDatabase) Type() DBType {
	return MemoryDB
}

func (db *MemDatabase) Put(key []byte, value []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	db.db[string(key)] = copyBytes(value)
	return nil
}

func (db *MemDatabase) Has(key []byte) (bool, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	_, ok := db.db[string(key)]
	return ok, nil
}

func (db *MemDatabase) Get(key []byte) ([]byte, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if entry, ok := db.db[string(key)]; ok {
		return copyBytes(entry), nil
	}
	return nil, ErrKeyNotFound
}

func (db *MemDatabase) Delete(key []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	delete(db.db, string(key))
	return nil
}

func (db *MemDatabase) Keys() [][]byte {
	db.lock.RLock()
	defer db.lock.RUnlock()

	keys := [][]byte{}
	for key := range db.db {
		keys = append(keys, []byte(key))
	}
	return keys
}

func (db *MemDatabase) NewIterator() Iterator {
	db.lock.RLock()
	defer db.lock.RUnlock()

	keys := make([]string, 0, len(db.db))
	for key := range db.db {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	values := make([][]byte, 0, len(keys))
	for _, key := range keys {
		values = append(values, copyBytes(db.db[key]))
	}
	return &memIterator{keys: keys, values: values, index: -1}
}

func (db *MemDatabase) Close() {}

func (db *MemDatabase) Len() int {
	db.lock.RLock()
	defer db.lock.RUnlock()

	return len(db.db)
}

func (db *MemDatabase) NewBatch() Batch {
	return &memBatch{db: db}
}

type memBatchOp struct {
	key    []byte
	value  []byte
	delete bool
}

type memBatch struct {
	db     *MemDatabase
	writes []memBatchOp
}

func (b *memBatch) Put(key, value []byte) error {
	b.writes = append(b.writes, memBatchOp{copyBytes(key), copyBytes(value), false})
	return nil
}

func (b *memBatch) Delete(key []byte) error {
	b.writes = append(b.writes, memBatchOp{copyBytes(key), nil, true})
	return nil
}

func (b *memBatch) Write() error {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()

	for _, op := range b.writes {
		if op.delete {
			delete(b.db.db, string(op.key))
			continue
		}
		b.db.db[string(op.key)] = op.value
	}
	return nil
}

func (b *memBatch) Reset() {
	b.writes = b.writes[:0]
}

type memIterator struct {
	keys   []string
	values [][]byte
	index  int
}

func (it *memIterator) Next() bool {
	it.index++
	return it.index < len(it.keys)
}

func (it *memIterator) Key() []byte {
	return []byte(it.keys[it.index])
}

func (it *memIterator) Value() []byte {
	return it.values[it.index]
}

func (it *memIterator) Release() {}
