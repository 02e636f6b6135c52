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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage"
	"github.com/meridian-network/meridian/storage/database"
)

func newTestState(t *testing.T) *storage.StateDB {
	t.Helper()
	stateDB, err := storage.NewStateDB(database.NewMemDatabase())
	require.NoError(t, err)
	return stateDB
}

func TestStateDBUpdateGetSetRemove(t *testing.T) {
	su := NewStateDBUpdate(newTestState(t), common.Hash{})

	_, ok := su.Get([]byte("k1"))
	assert.False(t, ok)

	su.Set([]byte("k1"), []byte("v1"))
	value, ok := su.Get([]byte("k1"))
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), value)

	su.Remove([]byte("k1"))
	_, ok = su.Get([]byte("k1"))
	assert.False(t, ok)
}

func TestStateDBUpdateRollbackDiscardsProspective(t *testing.T) {
	su := NewStateDBUpdate(newTestState(t), common.Hash{})
	su.Set([]byte("keep"), []byte("a"))
	su.Commit()

	su.Set([]byte("keep"), []byte("b"))
	su.Set([]byte("drop"), []byte("x"))
	su.Rollback()

	value, ok := su.Get([]byte("keep"))
	require.True(t, ok)
	assert.Equal(t, []byte("a"), value)
	_, ok = su.Get([]byte("drop"))
	assert.False(t, ok)
}

func TestStateDBUpdateRollbackOfRemove(t *testing.T) {
	su := NewStateDBUpdate(newTestState(t), common.Hash{})
	su.Set([]byte("k"), []byte("v"))
	su.Commit()

	su.Remove([]byte("k"))
	_, ok := su.Get([]byte("k"))
	assert.False(t, ok)

	su.Rollback()
	value, ok := su.Get([]byte("k"))
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)
}

func TestStateDBUpdateFinalizeDropsUncommitted(t *testing.T) {
	state := newTestState(t)
	su := NewStateDBUpdate(state, state.Root())
	su.Set([]byte("committed"), []byte("v"))
	su.Commit()
	su.Set([]byte("uncommitted"), []byte("v"))

	changes, root, err := su.Finalize()
	require.NoError(t, err)
	assert.Contains(t, changes, "committed")
	assert.NotContains(t, changes, "uncommitted")
	assert.NotEqual(t, state.Root(), root)
}

func TestStateDBUpdateFinalizeOnlyOnce(t *testing.T) {
	state := newTestState(t)
	su := NewStateDBUpdate(state, state.Root())
	_, _, err := su.Finalize()
	require.NoError(t, err)
	_, _, err = su.Finalize()
	assert.Error(t, err)
}

func TestStateDBUpdateReadsThroughToBackingState(t *testing.T) {
	state := newTestState(t)
	su := NewStateDBUpdate(state, state.Root())
	su.Set([]byte("k"), []byte("v"))
	su.Commit()
	changes, root, err := su.Finalize()
	require.NoError(t, err)
	require.NoError(t, state.Commit(changes))
	require.Equal(t, root, state.Root())

	fresh := NewStateDBUpdate(state, root)
	value, ok := fresh.Get([]byte("k"))
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)
}

func TestStateDBUpdateSetCopiesValue(t *testing.T) {
	su := NewStateDBUpdate(newTestState(t), common.Hash{})
	buf := []byte("mutable")
	su.Set([]byte("k"), buf)
	buf[0] = 'X'
	value, ok := su.Get([]byte("k"))
	require.True(t, ok)
	assert.Equal(t, []byte("mutable"), value)
}
