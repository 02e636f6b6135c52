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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage/database"
)

func TestStateDBEmptyRootIsZero(t *testing.T) {
	state, err := NewStateDB(database.NewMemDatabase())
	require.NoError(t, err)
	assert.Equal(t, common.Hash{}, state.Root())
}

func TestStateDBCommitAdvancesRoot(t *testing.T) {
	state, err := NewStateDB(database.NewMemDatabase())
	require.NoError(t, err)
	before := state.Root()

	require.NoError(t, state.Commit(DBChanges{"k1": []byte("v1")}))
	after := state.Root()
	assert.NotEqual(t, before, after)

	value, ok := state.Get([]byte("k1"))
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), value)
}

func TestStateDBRootWithIsPure(t *testing.T) {
	state, err := NewStateDB(database.NewMemDatabase())
	require.NoError(t, err)
	before := state.Root()

	predicted, err := state.RootWith(DBChanges{"k1": []byte("v1")})
	require.NoError(t, err)
	assert.Equal(t, before, state.Root())

	require.NoError(t, state.Commit(DBChanges{"k1": []byte("v1")}))
	assert.Equal(t, predicted, state.Root())
}

func TestStateDBDeleteRestoresRoot(t *testing.T) {
	state, err := NewStateDB(database.NewMemDatabase())
	require.NoError(t, err)
	empty := state.Root()

	require.NoError(t, state.Commit(DBChanges{"k1": []byte("v1")}))
	require.NoError(t, state.Commit(DBChanges{"k1": nil}))
	assert.Equal(t, empty, state.Root())
	_, ok := state.Get([]byte("k1"))
	assert.False(t, ok)
}

func TestStateDBRootIsOrderIndependent(t *testing.T) {
	a, err := NewStateDB(database.NewMemDatabase())
	require.NoError(t, err)
	b, err := NewStateDB(database.NewMemDatabase())
	require.NoError(t, err)

	require.NoError(t, a.Commit(DBChanges{"k1": []byte("v1")}))
	require.NoError(t, a.Commit(DBChanges{"k2": []byte("v2")}))
	require.NoError(t, b.Commit(DBChanges{"k2": []byte("v2"), "k1": []byte("v1")}))
	assert.Equal(t, a.Root(), b.Root())
}

func TestStateDBReopenKeepsRoot(t *testing.T) {
	db := database.NewMemDatabase()
	state, err := NewStateDB(db)
	require.NoError(t, err)
	require.NoError(t, state.Commit(DBChanges{"k1": []byte("v1"), "k2": []byte("v2")}))
	root := state.Root()

	reopened, err := NewStateDB(db)
	require.NoError(t, err)
	assert.Equal(t, root, reopened.Root())
}
