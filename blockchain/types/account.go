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

package types

import (
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/crypto"
)

// Account is the per-account record stored in the account column.
// Amount plus Staked is the total value of the account. CodeHash always
// equals the hash of the code blob stored for the account, or the hash of
// empty input when no code is installed.
type Account struct {
	PublicKeys []crypto.PublicKey
	Nonce      uint64
	Amount     uint64
	Staked     uint64
	CodeHash   common.Hash
}

// NewAccount builds a fresh account with nonce zero and nothing staked.
func NewAccount(publicKeys []crypto.PublicKey, amount uint64, codeHash common.Hash) *Account {
	return &Account{
		PublicKeys: publicKeys,
		Amount:     amount,
		CodeHash:   codeHash,
	}
}

// HasPublicKey reports whether key is in the account's authorized set.
func (a *Account) HasPublicKey(key crypto.PublicKey) bool {
	for _, k := range a.PublicKeys {
		if k.Equal(key) {
			return true
		}
	}
	return false
}

// AuthorityStake is a proposal to (re)bond an account's stake under one of
// its keys. Proposals are collected per apply and handed to consensus.
type AuthorityStake struct {
	AccountID string
	PublicKey crypto.PublicKey
	Amount    uint64
}
