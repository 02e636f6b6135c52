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

// TxInternalDataStake locks liquid balance as authority stake and proposes the
// originator's first public key to the authority set.
type TxInternalDataStake struct {
	AccountNonce uint64
	Originator   string
	Amount       uint64
	Mana         uint32
}

func (t *TxInternalDataStake) Type() TxType {
	return TxTypeStake
}

func (t *TxInternalDataStake) GetOriginator() string {
	return t.Originator
}

func (t *TxInternalDataStake) GetNonce() uint64 {
	return t.AccountNonce
}

func (t *TxInternalDataStake) GetMana() uint32 {
	return t.Mana
}

func (t *TxInternalDataStake) GetContractID() string {
	return ""
}

func (t *TxInternalDataStake) Equal(b TxInternalData) bool {
	tb, ok := b.(*TxInternalDataStake)
	return ok && *t == *tb
}
