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

// TxInternalDataSwapKey replaces one authorized key of the originator with a
// new one.
type TxInternalDataSwapKey struct {
	AccountNonce uint64
	Originator   string
	CurKey       []byte
	NewKey       []byte
	Mana         uint32
}

func (t *TxInternalDataSwapKey) Type() TxType {
	return TxTypeSwapKey
}

func (t *TxInternalDataSwapKey) GetOriginator() string {
	return t.Originator
}

func (t *TxInternalDataSwapKey) GetNonce() uint64 {
	return t.AccountNonce
}

func (t *TxInternalDataSwapKey) GetMana() uint32 {
	return t.Mana
}

func (t *TxInternalDataSwapKey) GetContractID() string {
	return ""
}

func (t *TxInternalDataSwapKey) Equal(b TxInternalData) bool {
	tb, ok := b.(*TxInternalDataSwapKey)
	return ok &&
		t.AccountNonce == tb.AccountNonce &&
		t.Originator == tb.Originator &&
		bytes.Equal(t.CurKey, tb.CurKey) &&
		bytes.Equal(t.NewKey, tb.NewKey) &&
		t.Mana == tb.Mana
}
