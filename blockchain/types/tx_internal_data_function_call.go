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

// TxInternalDataFunctionCall invokes a method of a deployed contract,
// attaching a deposit and a mana budget for follow-up calls.
type TxInternalDataFunctionCall struct {
	AccountNonce uint64
	Originator   string
	ContractID   string
	MethodName   []byte
	Args         []byte
	Amount       uint64
	Mana         uint32
}

func (t *TxInternalDataFunctionCall) Type() TxType {
	return TxTypeFunctionCall
}

func (t *TxInternalDataFunctionCall) GetOriginator() string {
	return t.Originator
}

func (t *TxInternalDataFunctionCall) GetNonce() uint64 {
	return t.AccountNonce
}

func (t *TxInternalDataFunctionCall) GetMana() uint32 {
	return t.Mana
}

func (t *TxInternalDataFunctionCall) GetContractID() string {
	return t.ContractID
}

func (t *TxInternalDataFunctionCall) Equal(b TxInternalData) bool {
	tb, ok := b.(*TxInternalDataFunctionCall)
	return ok &&
		t.AccountNonce == tb.AccountNonce &&
		t.Originator == tb.Originator &&
		t.ContractID == tb.ContractID &&
		bytes.Equal(t.MethodName, tb.MethodName) &&
		bytes.Equal(t.Args, tb.Args) &&
		t.Amount == tb.Amount &&
		t.Mana == tb.Mana
}
