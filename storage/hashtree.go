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

	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/crypto"
)

// hashKeyValueSet commits to a key/value set as a binary merkle tree over the
// key-ordered leaves. The empty set commits to the zero hash, which doubles as
// the pre-genesis root.
func hashKeyValueSet(kv map[string][]byte) common.Hash {
	if len(kv) == 0 {
		return common.Hash{}
	}
	keys := make([]string, 0, len(kv))
	for key := range kv {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	leaves := make([]common.Hash, len(keys))
	for i, key := range keys {
		// Length-prefix the key so (key, value) pairs cannot alias across
		// the boundary.
		leaves[i] = crypto.Keccak256Hash(common.IndexToBytes(uint64(len(key))), []byte(key), kv[key])
	}
	return reduceHashes(leaves)
}

// reduceHashes folds a layer of node hashes pairwise until a single root
// remains. An unpaired trailing node is promoted unchanged.
func reduceHashes(layer []common.Hash) common.Hash {
	for len(layer) > 1 {
		next := make([]common.Hash, 0, (len(layer)+1)/2)
		for i := 0; i+1 < len(layer); i += 2 {
			next = append(next, crypto.Keccak256Hash(layer[i].Bytes(), layer[i+1].Bytes()))
		}
		if len(layer)%2 == 1 {
			next = append(next, layer[len(layer)-1])
		}
		layer = next
	}
	return layer[0]
}
