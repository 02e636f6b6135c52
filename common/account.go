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
	"encoding/binary"
	"regexp"

	"golang.org/x/crypto/sha3"
)

// Account ids are lowercase alphanumeric strings with a restricted punctuation
// set. The bounds reject both vanity one-letter names and unbounded keys in
// the account column.
const (
	MinAccountIDLen = 5
	MaxAccountIDLen = 32
)

var accountIDPattern = regexp.MustCompile(`^[a-z0-9@._\-]+$`)

// SystemAccountID is the reserved originator of runtime-generated receipts.
const SystemAccountID = "system"

// IsValidAccountID reports whether id is usable as an account identifier.
func IsValidAccountID(id string) bool {
	if len(id) < MinAccountIDLen || len(id) > MaxAccountIDLen {
		return false
	}
	return accountIDPattern.MatchString(id)
}

// TotalShards is the number of shards account ids are routed over. It is a
// chain-wide constant; every node must run with the same value.
var TotalShards = uint64(1)

// AccountToShardID deterministically routes an account id to its home shard.
func AccountToShardID(id string) uint64 {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(id))
	digest := hasher.Sum(nil)
	return binary.BigEndian.Uint64(digest[:8]) % TotalShards
}
