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

package blockchain

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/meridian-network/meridian/blockchain/state"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/crypto"
	"github.com/meridian-network/meridian/storage"
)

// AccountView is the read-only projection of an account used by RPC and
// tests.
type AccountView struct {
	AccountID  string
	PublicKeys []crypto.PublicKey
	Nonce      uint64
	Amount     uint64
	Stake      uint64
	CodeHash   common.Hash
}

// StateViewer reads committed state without staging mutations.
type StateViewer struct {
	stateDB *storage.StateDB
}

// NewStateViewer wraps the committed state for read-only access.
func NewStateViewer(stateDB *storage.StateDB) *StateViewer {
	return &StateViewer{stateDB: stateDB}
}

// checkRoot guards against reads at a root the single-head store no longer
// holds.
func (v *StateViewer) checkRoot(root common.Hash) error {
	if root != v.stateDB.Root() {
		return errors.Errorf("unknown state root %s", root)
	}
	return nil
}

// ViewAccount returns the account projection at root.
func (v *StateViewer) ViewAccount(root common.Hash, accountID string) (*AccountView, error) {
	if err := v.checkRoot(root); err != nil {
		return nil, err
	}
	su := state.NewStateDBUpdate(v.stateDB, root)
	account, ok := getAccount(su, accountID)
	if !ok {
		return nil, errors.Errorf("account %s does not exist", accountID)
	}
	return &AccountView{
		AccountID:  accountID,
		PublicKeys: account.PublicKeys,
		Nonce:      account.Nonce,
		Amount:     account.Amount,
		Stake:      account.Staked,
		CodeHash:   account.CodeHash,
	}, nil
}

// ViewCode returns the code blob installed for accountID at root.
func (v *StateViewer) ViewCode(root common.Hash, accountID string) ([]byte, error) {
	if err := v.checkRoot(root); err != nil {
		return nil, err
	}
	su := state.NewStateDBUpdate(v.stateDB, root)
	code, ok := getCodeBytes(su, accountID)
	if !ok {
		return nil, errors.Errorf("account %s does not have contract code", accountID)
	}
	return code, nil
}

// ViewState returns the contract key/value pairs of accountID at root, keyed
// by the contract-visible key.
func (v *StateViewer) ViewState(root common.Hash, accountID string) (map[string][]byte, error) {
	if err := v.checkRoot(root); err != nil {
		return nil, err
	}
	prefix := string(contractStorageKey(accountID, nil))
	out := make(map[string][]byte)
	for _, key := range v.stateDB.SortedKeys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		value, ok := v.stateDB.Get([]byte(key))
		if !ok {
			continue
		}
		out[key[len(prefix):]] = value
	}
	return out, nil
}
