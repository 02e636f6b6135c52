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
	"github.com/pkg/errors"

	"github.com/meridian-network/meridian/blockchain/state"
	"github.com/meridian-network/meridian/blockchain/types"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/crypto"
)

// GenesisAccount seeds one account at genesis. PublicKey is the canonical hex
// text form.
type GenesisAccount struct {
	ID        string
	PublicKey string
	Balance   uint64
	TxStake   uint64
}

// GenesisAuthority bonds initial stake on an already seeded account.
type GenesisAuthority struct {
	AccountID string
	PublicKey string
	Amount    uint64
}

// ApplyGenesisState installs the chain-spec accounts, the shared default code
// blob, and the initial authority stakes, committing directly to the backing
// state. It returns the genesis root.
func (rt *Runtime) ApplyGenesisState(accounts []GenesisAccount, wasmBinary []byte,
	authorities []GenesisAuthority) (common.Hash, error) {
	su := state.NewStateDBUpdate(rt.stateDB, common.Hash{})
	codeHash := crypto.Keccak256Hash(wasmBinary)
	for _, genesis := range accounts {
		publicKey, err := crypto.ParsePublicKey(genesis.PublicKey)
		if err != nil {
			return common.Hash{}, errors.Wrapf(err, "genesis account %s", genesis.ID)
		}
		setAccount(su, genesis.ID, types.NewAccount([]crypto.PublicKey{publicKey}, genesis.Balance, codeHash))
		// Default code
		setCodeBytes(su, genesis.ID, wasmBinary)
		// Default transaction stake
		stake := NewTxTotalStake(0)
		stake.AddActiveStake(genesis.TxStake)
		setTxStake(su, genesis.ID, "", stake)
	}
	for _, authority := range authorities {
		account, ok := getAccount(su, authority.AccountID)
		if !ok {
			return common.Hash{}, errors.Errorf("genesis authority %s is not a genesis account", authority.AccountID)
		}
		account.Staked = authority.Amount
		setAccount(su, authority.AccountID, account)
	}
	su.Commit()
	changes, root, err := su.Finalize()
	if err != nil {
		return common.Hash{}, err
	}
	if err := rt.stateDB.Commit(changes); err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to commit genesis state")
	}
	logger.WithField("root", root).Info("Installed genesis state")
	return root, nil
}
