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

package storage

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage/database"
)

var logger = logrus.WithField("module", "storage")

// DBChanges is a write set produced by finalizing a staged state update.
// A nil value marks a deletion.
type DBChanges map[string][]byte

// StateDB is the committed key/value state of one shard together with its
// merkle commitment. It tracks a single head root; staged updates are layered
// on top by blockchain/state.StateDBUpdate and folded back in through Commit.
type StateDB struct {
	mu   sync.RWMutex
	db   database.Database
	keys map[string]struct{}
	root common.Hash
}

// NewStateDB loads the key index of the backing database and computes the
// current root commitment.
func NewStateDB(db database.Database) (*StateDB, error) {
	state := &StateDB{
		db:   db,
		keys: make(map[string]struct{}),
	}
	it := db.NewIterator()
	defer it.Release()
	for it.Next() {
		state.keys[string(it.Key())] = struct{}{}
	}
	root, err := state.rootWithLocked(nil)
	if err != nil {
		return nil, err
	}
	state.root = root
	logger.WithFields(logrus.Fields{"keys": len(state.keys), "root": root}).Debug("Opened state")
	return state, nil
}

// Get returns the committed value stored under key.
func (s *StateDB) Get(key []byte) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.keys[string(key)]; !ok {
		return nil, false
	}
	value, err := s.db.Get(key)
	if err != nil {
		return nil, false
	}
	return value, true
}

// Root returns the commitment over the current committed key/value set.
func (s *StateDB) Root() common.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// RootWith computes the commitment the state would have after applying
// changes, without mutating anything.
func (s *StateDB) RootWith(changes DBChanges) (common.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootWithLocked(changes)
}

func (s *StateDB) rootWithLocked(changes DBChanges) (common.Hash, error) {
	merged := make(map[string][]byte, len(s.keys)+len(changes))
	for key := range s.keys {
		if changes != nil {
			if value, ok := changes[key]; ok {
				if value != nil {
					merged[key] = value
				}
				continue
			}
		}
		value, err := s.db.Get([]byte(key))
		if err != nil {
			return common.Hash{}, errors.Wrap(err, "state key vanished under root computation")
		}
		merged[key] = value
	}
	for key, value := range changes {
		if value == nil {
			continue
		}
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}
	return hashKeyValueSet(merged), nil
}

// Commit atomically applies changes to the backing database and advances the
// head root.
func (s *StateDB) Commit(changes DBChanges) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newRoot, err := s.rootWithLocked(changes)
	if err != nil {
		return err
	}
	batch := s.db.NewBatch()
	for key, value := range changes {
		if value == nil {
			if err := batch.Delete([]byte(key)); err != nil {
				return err
			}
			continue
		}
		if err := batch.Put([]byte(key), value); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "cannot commit state changes")
	}
	for key, value := range changes {
		if value == nil {
			delete(s.keys, key)
			continue
		}
		s.keys[key] = struct{}{}
	}
	s.root = newRoot
	return nil
}

// SortedKeys returns the committed keys in ascending order. Used by read-only
// viewers iterating account-scoped data.
func (s *StateDB) SortedKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.keys))
	for key := range s.keys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
