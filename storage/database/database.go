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
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger = logrus.WithField("module", "storage/database")

func nowForMetrics() time.Time { return time.Now() }

// DBType is the type of the database backing a Database instance.
type DBType int

const (
	LevelDB DBType = iota
	BadgerDB
	MemoryDB
)

// ErrKeyNotFound is returned by Get when the key is absent, regardless of
// backend.
var ErrKeyNotFound = errors.New("database: key not found")

// Database wraps all database operations. All methods are safe for concurrent
// use.
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Delete(key []byte) error

	// NewIterator iterates the full key space in ascending key order.
	NewIterator() Iterator

	NewBatch() Batch
	Type() DBType
	Close()
}

// Iterator walks keys in ascending order. Release must be called when done.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
}

// Batch is a write-only accumulator of puts and deletes committed atomically
// by Write.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Write() error
	Reset()
}

// NewDatabase opens a database of the given type rooted at dir. MemoryDB
// ignores dir.
func NewDatabase(dbType DBType, dir string) (Database, error) {
	switch dbType {
	case LevelDB:
		return NewLDBDatabase(dir, 16, 16)
	case BadgerDB:
		return NewBadgerDatabase(dir)
	case MemoryDB:
		return NewMemDatabase(), nil
	default:
		return nil, errors.Errorf("database: unknown db type %d", dbType)
	}
}
