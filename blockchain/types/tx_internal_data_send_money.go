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

// TxInternalDataSendMoney moves liquid balance from the originator to an
// account that may live on another shard.
type TxInternalDataSendMoney struct {
	AccountNonce uint64
	Originator   string
	Receiver     string
	Amount       uint64
	Mana         uint32
}

func (t *TxInternalDataSendMoney) Type() TxType {
	return TxTypeSendMoney
}

func (t *TxInternalDataSendMoney) GetOriginator() string {
	return t.Originator
}

func (t *TxInternalDataSendMoney) GetNonce() uint64 {
	return t.AccountNonce
}

func (t *TxInternalDataSendMoney) GetMana() uint32 {
	return t.Mana
}

func (t *TxInternalDataSendMoney) GetContractID() string {
	return ""
}

func (t *TxInternalDataSendMoney) Equal(b TxInternalData) bool {
	tb, ok := b.(*TxInternalDataSendMoney)
	return ok && *t == *tb
}
