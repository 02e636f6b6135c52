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

package main

import (
	"os"

	"github.com/naoina/toml"
	"github.com/pkg/errors"

	"github.com/meridian-network/meridian/blockchain"
)

// ChainSpec is the TOML genesis description consumed by `meridian init`.
type ChainSpec struct {
	Accounts    []SpecAccount
	Authorities []SpecAuthority
	WasmPath    string
}

// SpecAccount seeds one genesis account.
type SpecAccount struct {
	ID        string
	PublicKey string
	Balance   uint64
	TxStake   uint64
}

// SpecAuthority bonds initial stake on a genesis account.
type SpecAuthority struct {
	AccountID string
	PublicKey string
	Amount    uint64
}

func loadChainSpec(path string) (*ChainSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open chain spec")
	}
	defer f.Close()

	spec := new(ChainSpec)
	if err := toml.NewDecoder(f).Decode(spec); err != nil {
		return nil, errors.Wrap(err, "cannot decode chain spec")
	}
	return spec, nil
}

func (s *ChainSpec) genesisAccounts() []blockchain.GenesisAccount {
	accounts := make([]blockchain.GenesisAccount, 0, len(s.Accounts))
	for _, account := range s.Accounts {
		accounts = append(accounts, blockchain.GenesisAccount{
			ID:        account.ID,
			PublicKey: account.PublicKey,
			Balance:   account.Balance,
			TxStake:   account.TxStake,
		})
	}
	return accounts
}

func (s *ChainSpec) genesisAuthorities() []blockchain.GenesisAuthority {
	authorities := make([]blockchain.GenesisAuthority, 0, len(s.Authorities))
	for _, authority := range s.Authorities {
		authorities = append(authorities, blockchain.GenesisAuthority{
			AccountID: authority.AccountID,
			PublicKey: authority.PublicKey,
			Amount:    authority.Amount,
		})
	}
	return authorities
}
