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

package state

import (
	"github.com/pkg/errors"

	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage"
)

// StateDBUpdate is the staged mutation journal over a committed state. It is
// a two-level overlay: prospective changes accumulate until Commit promotes
// them to the committed overlay or Rollback discards them. Finalize folds the
// committed overlay into a write set and the post-state root.
//
// A nil map value marks a staged deletion. Instances are owned by a single
// apply call frame and are not safe for concurrent use.
type StateDBUpdate struct {
	state       *storage.StateDB
	root        common.Hash
	committed   map[string][]byte
	prospective map[string][]byte
	finalized   bool
}

// NewStateDBUpdate opens a staged update over state. Reads fall through to the
// current head of state; root is recorded and returned by Root, and is not
// checked against the head.
func NewStateDBUpdate(state *storage.StateDB, root common.Hash) *StateDBUpdate {
	return &StateDBUpdate{
		state:       state,
		root:        root,
		committed:   make(map[string][]byte),
		prospective: make(map[string][]byte),
	}
}

// Root returns the root this update was opened at.
func (su *StateDBUpdate) Root() common.Hash {
	return su.root
}

// Get returns the value visible at key: prospective first, then committed,
// then the backing state.
func (su *StateDBUpdate) Get(key []byte) ([]byte, bool) {
	if value, ok := su.prospective[string(key)]; ok {
		return value, value != nil
	}
	if value, ok := su.committed[string(key)]; ok {
		return value, value != nil
	}
	return su.state.Get(key)
}

// Set stages a write of value under key.
func (su *StateDBUpdate) Set(key, value []byte) {
	staged := make([]byte, len(value))
	copy(staged, value)
	su.prospective[string(key)] = staged
}

// Remove stages a deletion of key.
func (su *StateDBUpdate) Remove(key []byte) {
	su.prospective[string(key)] = nil
}

// Commit promotes all prospective changes to the committed overlay.
func (su *StateDBUpdate) Commit() {
	for key, value := range su.prospective {
		su.committed[key] = value
	}
	su.prospective = make(map[string][]byte)
}

// Rollback discards all prospective changes staged since the last Commit.
func (su *StateDBUpdate) Rollback() {
	su.prospective = make(map[string][]byte)
}

// Finalize folds the committed overlay into a write set and computes the
// post-state root. Prospective changes staged after the last Commit are
// dropped. Finalize may be called at most once.
func (su *StateDBUpdate) Finalize() (storage.DBChanges, common.Hash, error) {
	if su.finalized {
		return nil, common.Hash{}, errors.New("state update already finalized")
	}
	su.finalized = true
	changes := make(storage.DBChanges, len(su.committed))
	for key, value := range su.committed {
		changes[key] = value
	}
	root, err := su.state.RootWith(changes)
	if err != nil {
		return nil, common.Hash{}, err
	}
	return changes, root, nil
}
