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

// TxInternalDataCreateAccount seeds a new account on the new account's home
// shard with an initial key and balance.
type TxInternalDataCreateAccount struct {
	AccountNonce uint64
	Originator   string
	NewAccountID string
	Amount       uint64
	PublicKey    []byte
	Mana         uint32
}

func (t *TxInternalDataCreateAccount) Type() TxType {
	return TxTypeCreateAccount
}

func (t *TxInternalDataCreateAccount) GetOriginator() string {
	return t.Originator
}

func (t *TxInternalDataCreateAccount) GetNonce() uint64 {
	return t.AccountNonce
}

func (t *TxInternalDataCreateAccount) GetMana() uint32 {
	return t.Mana
}

func (t *TxInternalDataCreateAccount) GetContractID() string {
	return ""
}

func (t *TxInternalDataCreateAccount) Equal(b TxInternalData) bool {
	tb, ok := b.(*TxInternalDataCreateAccount)
	return ok &&
		t.AccountNonce == tb.AccountNonce &&
		t.Originator == tb.Originator &&
		t.NewAccountID == tb.NewAccountID &&
		t.Amount == tb.Amount &&
		bytes.Equal(t.PublicKey, tb.PublicKey) &&
		t.Mana == tb.Mana
}
