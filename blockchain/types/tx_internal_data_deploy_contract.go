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

import "bytes"

// TxInternalDataDeployContract installs WASM code on the contract account.
// The deploy is routed as a system receipt so the code lands on the contract's
// home shard.
type TxInternalDataDeployContract struct {
	AccountNonce uint64
	Originator   string
	ContractID   string
	PublicKey    []byte
	Code         []byte
	Mana         uint32
}

func (t *TxInternalDataDeployContract) Type() TxType {
	return TxTypeDeployContract
}

func (t *TxInternalDataDeployContract) GetOriginator() string {
	return t.Originator
}

func (t *TxInternalDataDeployContract) GetNonce() uint64 {
	return t.AccountNonce
}

func (t *TxInternalDataDeployContract) GetMana() uint32 {
	return t.Mana
}

func (t *TxInternalDataDeployContract) GetContractID() string {
	return t.ContractID
}

func (t *TxInternalDataDeployContract) Equal(b TxInternalData) bool {
	tb, ok := b.(*TxInternalDataDeployContract)
	return ok &&
		t.AccountNonce == tb.AccountNonce &&
		t.Originator == tb.Originator &&
		t.ContractID == tb.ContractID &&
		bytes.Equal(t.PublicKey, tb.PublicKey) &&
		bytes.Equal(t.Code, tb.Code) &&
		t.Mana == tb.Mana
}
