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

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidAccountID(t *testing.T) {
	valid := []string{
		"alice.near",
		"bob.near",
		"system",
		"a-b_c@d.e",
		"01234567890123456789012345678901", // 32 chars
	}
	for _, id := range valid {
		assert.True(t, IsValidAccountID(id), id)
	}

	invalid := []string{
		"",
		"eve",                               // too short
		"Alice.near",                        // capital letter
		"alice(near)",                       // brackets are invalid
		"long_of_the_name_for_real_is_hard", // too long
		"qq@qq*qq",                          // * is invalid
		"with space",
		"alice:near",
	}
	for _, id := range invalid {
		assert.False(t, IsValidAccountID(id), id)
	}
}

func TestAccountToShardIDIsStable(t *testing.T) {
	oldShards := TotalShards
	TotalShards = 16
	defer func() { TotalShards = oldShards }()

	first := AccountToShardID("alice.near")
	assert.True(t, first < 16)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, AccountToShardID("alice.near"))
	}
}

func TestAccountToShardIDSingleShard(t *testing.T) {
	assert.Equal(t, uint64(0), AccountToShardID("alice.near"))
	assert.Equal(t, uint64(0), AccountToShardID("bob.near"))
}

func TestIndexToBytesBigEndian(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1}, IndexToBytes(1))
	assert.Equal(t, []byte{0, 0, 0, 1, 0, 0, 0, 0}, IndexToBytes(1<<32))
}
