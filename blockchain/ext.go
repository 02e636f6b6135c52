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
	"github.com/meridian-network/meridian/blockchain/vm"
	"github.com/meridian-network/meridian/common"
)

var (
	errReceiptHasCallback  = errors.New("receipt already has callback")
	errCallbackHasCallback = errors.New("callback already has callback")
	errUnknownPromise      = errors.New("unknown promise")
	errJoinOnCallback      = errors.New("cannot join on a callback promise")
)

// RuntimeExt is the host bridge handed to the executor for one invocation.
// It scopes storage to the executing account, mints identifiers from the
// receipt nonce, and collects the receipts and callbacks the execution
// creates. Receipts and callbacks are kept in creation order so outputs are
// deterministic.
type RuntimeExt struct {
	su             *state.StateDBUpdate
	accountID      string
	accountingInfo types.AccountingInfo
	baseNonce      common.Hash
	counter        uint64

	receipts     []*types.Receipt
	receiptIndex map[string]*types.Receipt

	callbackOrder []string
	callbacks     map[string]*types.Callback
}

func newRuntimeExt(su *state.StateDBUpdate, accountID string, info types.AccountingInfo, nonce common.Hash) *RuntimeExt {
	return &RuntimeExt{
		su:             su,
		accountID:      accountID,
		accountingInfo: info,
		baseNonce:      nonce,
		receiptIndex:   make(map[string]*types.Receipt),
		callbacks:      make(map[string]*types.Callback),
	}
}

// createNonce mints the next identifier in this invocation's output stream.
// The stream is shared with the receipt applier so output indices stay
// contiguous.
func (r *RuntimeExt) createNonce() common.Hash {
	nonce := createNonceWithNonce(r.baseNonce, r.counter)
	r.counter++
	return nonce
}

// StorageSet implements vm.External.
func (r *RuntimeExt) StorageSet(key, value []byte) error {
	r.su.Set(contractStorageKey(r.accountID, key), value)
	return nil
}

// StorageGet implements vm.External.
func (r *RuntimeExt) StorageGet(key []byte) ([]byte, bool, error) {
	value, ok := r.su.Get(contractStorageKey(r.accountID, key))
	return value, ok, nil
}

// StorageRemove implements vm.External.
func (r *RuntimeExt) StorageRemove(key []byte) error {
	r.su.Remove(contractStorageKey(r.accountID, key))
	return nil
}

// PromiseCreate implements vm.External: it registers an outbound async call
// paid for by this invocation's accounting scope.
func (r *RuntimeExt) PromiseCreate(receiver string, methodName, args []byte, mana uint32, amount uint64) (vm.PromiseID, error) {
	if !common.IsValidAccountID(receiver) {
		return nil, errors.Errorf("invalid promise receiver %q", receiver)
	}
	nonce := r.createNonce()
	receipt := types.NewReceipt(r.accountID, receiver, nonce,
		types.NewAsyncCall(methodName, args, amount, mana, r.accountingInfo))
	r.receipts = append(r.receipts, receipt)
	r.receiptIndex[string(nonce.Bytes())] = receipt
	return vm.ReceiptPromise{ID: nonce.Bytes()}, nil
}

// PromiseThen implements vm.External: it creates a callback join record over
// the awaited promise(s) and points each awaited receipt at its result slot.
func (r *RuntimeExt) PromiseThen(promise vm.PromiseID, methodName, args []byte, mana uint32) (vm.PromiseID, error) {
	var ids [][]byte
	switch p := promise.(type) {
	case vm.ReceiptPromise:
		ids = [][]byte{p.ID}
	case vm.JoinerPromise:
		ids = p.IDs
	case vm.CallbackPromise:
		return nil, errJoinOnCallback
	default:
		return nil, errUnknownPromise
	}
	callback := types.NewCallback(methodName, args, len(ids), mana, r.accountingInfo)
	callbackID := r.createNonce().Bytes()
	for i, id := range ids {
		receipt, ok := r.receiptIndex[string(id)]
		if !ok {
			return nil, errUnknownPromise
		}
		call, ok := receipt.Body.(*types.AsyncCall)
		if !ok {
			return nil, errors.New("promise receipt body is not a new call")
		}
		if call.Callback != nil {
			return nil, errReceiptHasCallback
		}
		call.Callback = types.NewCallbackInfo(callbackID, uint64(i), r.accountID)
	}
	r.callbackOrder = append(r.callbackOrder, string(callbackID))
	r.callbacks[string(callbackID)] = callback
	return vm.CallbackPromise{ID: callbackID}, nil
}

// getReceipts hands over the receipts created during the execution, in
// creation order.
func (r *RuntimeExt) getReceipts() []*types.Receipt {
	return r.receipts
}

// getCallback returns an unflushed callback created during the execution.
func (r *RuntimeExt) getCallback(id []byte) (*types.Callback, bool) {
	callback, ok := r.callbacks[string(id)]
	return callback, ok
}

// flushCallbacks stages every callback created during the execution into the
// state, in creation order.
func (r *RuntimeExt) flushCallbacks() {
	for _, id := range r.callbackOrder {
		setCallback(r.su, []byte(id), r.callbacks[id])
	}
}
