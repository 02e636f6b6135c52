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
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-network/meridian/crypto"
)

func TestSignedTransactionEncodeDecode(t *testing.T) {
	tx := NewSignedTransaction(crypto.DefaultSignature, &TxInternalDataFunctionCall{
		AccountNonce: 7,
		Originator:   "alice.near",
		ContractID:   "bob.near",
		MethodName:   []byte("run_test"),
		Args:         []byte{1, 2, 3},
		Amount:       5,
		Mana:         2,
	})
	encoded, err := rlp.EncodeToBytes(tx)
	require.NoError(t, err)

	decoded := new(SignedTransaction)
	require.NoError(t, rlp.DecodeBytes(encoded, decoded))
	assert.True(t, tx.Body.Equal(decoded.Body))
	assert.Equal(t, tx.Hash(), decoded.Hash())
}

func TestTransactionHashDependsOnBody(t *testing.T) {
	base := &TxInternalDataSendMoney{
		AccountNonce: 1, Originator: "alice.near", Receiver: "bob.near", Amount: 10, Mana: 1,
	}
	other := *base
	other.Amount = 11
	hashA := NewSignedTransaction(crypto.DefaultSignature, base).Hash()
	hashB := NewSignedTransaction(crypto.DefaultSignature, &other).Hash()
	assert.NotEqual(t, hashA, hashB)

	again := NewSignedTransaction(crypto.DefaultSignature, base).Hash()
	assert.Equal(t, hashA, again)
}

func TestReceiptEncodeDecodeWithCallback(t *testing.T) {
	call := NewAsyncCall([]byte("run_test"), []byte{9}, 3, 2,
		AccountingInfo{Originator: "alice.near", ContractID: "bob.near"})
	call.Callback = NewCallbackInfo(make([]byte, 32), 1, "alice.near")
	receipt := NewReceipt("alice.near", "bob.near", crypto.Keccak256Hash([]byte{1}), call)

	encoded, err := rlp.EncodeToBytes(receipt)
	require.NoError(t, err)
	decoded := new(Receipt)
	require.NoError(t, rlp.DecodeBytes(encoded, decoded))

	assert.Equal(t, receipt.Originator, decoded.Originator)
	assert.Equal(t, receipt.Nonce, decoded.Nonce)
	decodedCall, ok := decoded.Body.(*AsyncCall)
	require.True(t, ok)
	assert.Equal(t, call.Callback, decodedCall.Callback)
	assert.Equal(t, call.AccountingInfo, decodedCall.AccountingInfo)
}

func TestReceiptEncodeDecodeWithoutCallback(t *testing.T) {
	receipt := NewReceipt("alice.near", "bob.near", crypto.Keccak256Hash([]byte{2}),
		NewAsyncCall(nil, nil, 10, 0, AccountingInfo{Originator: "alice.near"}))
	encoded, err := rlp.EncodeToBytes(receipt)
	require.NoError(t, err)
	decoded := new(Receipt)
	require.NoError(t, rlp.DecodeBytes(encoded, decoded))
	decodedCall, ok := decoded.Body.(*AsyncCall)
	require.True(t, ok)
	assert.Nil(t, decodedCall.Callback)
	assert.Equal(t, uint64(10), decodedCall.Amount)
}

func TestCallbackCompletion(t *testing.T) {
	callback := NewCallback([]byte("m"), nil, 2, 0, AccountingInfo{Originator: "alice.near"})
	assert.False(t, callback.Complete())
	callback.Results[0] = PromiseResult{Ok: true}
	callback.ResultCounter++
	assert.False(t, callback.Complete())
	callback.Results[1] = PromiseResult{}
	callback.ResultCounter++
	assert.True(t, callback.Complete())
}
