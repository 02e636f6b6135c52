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
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/meridian-network/meridian/blockchain/state"
	"github.com/meridian-network/meridian/blockchain/types"
	"github.com/meridian-network/meridian/blockchain/vm"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/crypto"
)

// deposit credits the receiver with the amount carried by an empty-method
// call.
func (rt *Runtime) deposit(su *state.StateDBUpdate, amount uint64, receiverID string, receiver *types.Account) ([]*types.Receipt, error) {
	receiver.Amount += amount
	setAccount(su, receiverID, receiver)
	return nil, nil
}

// systemCreateAccount creates the receiver account from a system
// create-account call arriving on its home shard.
func (rt *Runtime) systemCreateAccount(su *state.StateDBUpdate, call *types.AsyncCall, accountID string) ([]*types.Receipt, error) {
	if !common.IsValidAccountID(accountID) {
		return nil, errors.Errorf("account %s does not match requirements", accountID)
	}
	publicKey, err := crypto.DecodePublicKey(call.Args)
	if err != nil {
		return nil, errors.New("cannot decode public key")
	}
	newAccount := types.NewAccount([]crypto.PublicKey{publicKey}, call.Amount, crypto.Keccak256Hash(nil))
	setAccount(su, accountID, newAccount)

	// New accounts start with a default mana stake so they can transact at
	// all before staking explicitly.
	stake := NewTxTotalStake(0)
	stake.AddActiveStake(rt.defaultAccountTxStake)
	setTxStake(su, accountID, "", stake)
	return nil, nil
}

// systemDeploy creates the receiver account and installs the carried code.
func (rt *Runtime) systemDeploy(su *state.StateDBUpdate, call *types.AsyncCall, accountID string) ([]*types.Receipt, error) {
	args, err := decodeDeployArgs(call.Args)
	if err != nil {
		return nil, errors.New("cannot decode args")
	}
	publicKey, err := crypto.DecodePublicKey(args.PublicKey)
	if err != nil {
		return nil, errors.New("cannot decode public key")
	}
	newAccount := types.NewAccount([]crypto.PublicKey{publicKey}, call.Amount, crypto.Keccak256Hash(args.Code))
	setAccount(su, accountID, newAccount)
	setCodeBytes(su, accountID, args.Code)
	return nil, nil
}

// deployCode installs code on an existing receiver after checking the carried
// key is authorized.
func (rt *Runtime) deployCode(su *state.StateDBUpdate, call *types.AsyncCall, accountID string, receiver *types.Account) ([]*types.Receipt, error) {
	args, err := decodeDeployArgs(call.Args)
	if err != nil {
		return nil, errors.New("cannot decode args")
	}
	publicKey, err := crypto.DecodePublicKey(args.PublicKey)
	if err != nil {
		return nil, errors.New("cannot decode public key")
	}
	if !receiver.HasPublicKey(publicKey) {
		return nil, errors.Errorf("account %s does not contain key %s", accountID, publicKey)
	}
	receiver.CodeHash = crypto.Keccak256Hash(args.Code)
	setCodeBytes(su, accountID, args.Code)
	setAccount(su, accountID, receiver)
	return nil, nil
}

// returnDataToReceipts maps what the execution returned onto outbound
// receipts: an immediate value resolves the pending callback slot, a promise
// forwards the slot to whatever the promise resolves to.
func returnDataToReceipts(ext *RuntimeExt, returnData vm.ReturnData, callbackInfo *types.CallbackInfo,
	senderID, receiverID string) ([]*types.Receipt, error) {
	if callbackInfo == nil {
		receipts := ext.getReceipts()
		ext.flushCallbacks()
		return receipts, nil
	}
	var callbackRes *types.CallbackResult
	switch data := returnData.(type) {
	case vm.ReturnValue:
		callbackRes = types.NewCallbackResult(*callbackInfo, true, data.Data)
	case vm.ReturnNone:
		callbackRes = types.NewCallbackResult(*callbackInfo, true, []byte{})
	case vm.ReturnPromise:
		switch promise := data.ID.(type) {
		case vm.CallbackPromise:
			callback, ok := ext.getCallback(promise.ID)
			if !ok {
				return nil, errors.New("returned callback promise must exist")
			}
			if callback.Callback != nil {
				return nil, errCallbackHasCallback
			}
			callback.Callback = callbackInfo
		case vm.ReceiptPromise:
			receipt, ok := ext.receiptIndex[string(promise.ID)]
			if !ok {
				return nil, errors.New("returned receipt promise must exist")
			}
			call, ok := receipt.Body.(*types.AsyncCall)
			if !ok {
				return nil, errors.New("receipt body is not a new call")
			}
			if call.Callback != nil {
				return nil, errReceiptHasCallback
			}
			call.Callback = callbackInfo
		default:
			return nil, errors.New("return data is a non-callback promise")
		}
	default:
		return nil, errors.New("return data is a non-callback promise")
	}
	receipts := ext.getReceipts()
	if callbackRes != nil {
		receipts = append(receipts, types.NewReceipt(receiverID, senderID, ext.createNonce(),
			callbackRes))
	}
	ext.flushCallbacks()
	return receipts, nil
}

// applyAsyncCall runs a method of the receiver's code. Gas, mana and log
// accounting is recorded even when the execution fails.
func (rt *Runtime) applyAsyncCall(su *state.StateDBUpdate, asyncCall *types.AsyncCall,
	senderID, receiverID string, nonce common.Hash, receiver *types.Account,
	manaAccounting *types.ManaAccounting, blockIndex uint64, logs *[]string) ([]*types.Receipt, error) {
	code, ok := rt.getCode(su, receiverID, receiver.CodeHash)
	if !ok {
		return nil, errors.Errorf("cannot find contract code for account %s", receiverID)
	}
	manaAccounting.GasUsed = 0
	manaAccounting.ManaRefund = asyncCall.Mana
	manaAccounting.AccountingInfo = asyncCall.AccountingInfo

	ext := newRuntimeExt(su, receiverID, asyncCall.AccountingInfo, nonce)
	output, err := rt.executor.Execute(code, asyncCall.MethodName, asyncCall.Args, nil, ext,
		vm.DefaultConfig(), &vm.Context{
			InitialBalance: receiver.Amount,
			ReceivedAmount: asyncCall.Amount,
			Originator:     senderID,
			Receiver:       receiverID,
			Mana:           asyncCall.Mana,
			BlockIndex:     blockIndex,
			Nonce:          nonce.Bytes(),
		})
	if err != nil {
		return nil, errors.Wrapf(err, "wasm async call preparation failed")
	}
	manaAccounting.GasUsed = output.GasUsed
	manaAccounting.ManaRefund = output.ManaLeft
	*logs = append(*logs, output.Logs...)
	if output.Err != nil {
		return nil, errors.Wrapf(output.Err, "wasm async call execution failed")
	}
	receipts, err := returnDataToReceipts(ext, output.ReturnData, asyncCall.Callback, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	receiver.Amount = output.Balance
	setAccount(su, receiverID, receiver)
	return receipts, nil
}

// applyCallback delivers one promise result into a callback join record and
// dispatches the callback once every slot is filled. The record is deleted
// exactly when dispatch happened, whatever the dispatch outcome.
func (rt *Runtime) applyCallback(su *state.StateDBUpdate, callbackRes *types.CallbackResult,
	senderID, receiverID string, nonce common.Hash, receiver *types.Account,
	manaAccounting *types.ManaAccounting, blockIndex uint64, logs *[]string) ([]*types.Receipt, error) {
	manaAccounting.GasUsed = 0
	manaAccounting.ManaRefund = 0

	callback, ok := getCallback(su, callbackRes.Info.ID)
	if !ok {
		return nil, errors.Errorf("callback id: %x not found", callbackRes.Info.ID)
	}
	code, found := rt.getCode(su, receiverID, receiver.CodeHash)
	if !found {
		return nil, errors.Errorf("account %s does not have contract code", receiverID)
	}
	if callbackRes.Info.ResultIndex >= uint64(len(callback.Results)) {
		return nil, errors.Errorf("result index %d out of bounds for callback id: %x",
			callbackRes.Info.ResultIndex, callbackRes.Info.ID)
	}
	callback.Results[callbackRes.Info.ResultIndex] = callbackRes.Result
	callback.ResultCounter++

	// Not complete yet: persist the updated join record, no receipts.
	if !callback.Complete() {
		setCallback(su, callbackRes.Info.ID, callback)
		return nil, nil
	}

	manaAccounting.AccountingInfo = callback.AccountingInfo
	manaAccounting.ManaRefund = callback.Mana

	ext := newRuntimeExt(su, receiverID, callback.AccountingInfo, nonce)
	receipts, err := func() ([]*types.Receipt, error) {
		output, err := rt.executor.Execute(code, callback.MethodName, callback.Args, callback.Results,
			ext, vm.DefaultConfig(), &vm.Context{
				InitialBalance: receiver.Amount,
				ReceivedAmount: 0,
				Originator:     senderID,
				Receiver:       receiverID,
				Mana:           callback.Mana,
				BlockIndex:     blockIndex,
				Nonce:          nonce.Bytes(),
			})
		if err != nil {
			return nil, errors.Wrapf(err, "wasm callback execution failed")
		}
		manaAccounting.GasUsed = output.GasUsed
		manaAccounting.ManaRefund = output.ManaLeft
		*logs = append(*logs, output.Logs...)
		if output.Err != nil {
			return nil, errors.Wrapf(output.Err, "wasm callback execution failed")
		}
		receipts, err := returnDataToReceipts(ext, output.ReturnData, callback.Callback, senderID, receiverID)
		if err != nil {
			return nil, err
		}
		receiver.Amount = output.Balance
		return receipts, nil
	}()

	if err != nil {
		// Dispatch happened and failed: undo its staged effects, then commit
		// only the removal of the join record.
		su.Rollback()
		su.Remove(callbackIDToKey(callbackRes.Info.ID))
		su.Commit()
		return nil, err
	}
	su.Remove(callbackIDToKey(callbackRes.Info.ID))
	setAccount(su, receiverID, receiver)
	return receipts, nil
}

// applyManaAccounting settles a finished call against its mana bucket. A
// missing bucket means the charge/refund pairing broke, which is state
// corruption.
func (rt *Runtime) applyManaAccounting(su *state.StateDBUpdate, accounting *types.ManaAccounting, blockIndex uint64) ([]*types.Receipt, error) {
	stake, ok := getTxStake(su, accounting.AccountingInfo.Originator, accounting.AccountingInfo.ContractID)
	if !ok {
		logger.WithFields(logrus.Fields{
			"originator": accounting.AccountingInfo.Originator,
			"contractID": accounting.AccountingInfo.ContractID,
		}).Panic("tx stake doesn't exist when mana accounting arrived")
	}
	stake.Update(blockIndex, DefaultTxStakeConfig())
	stake.RefundManaAndChargeGas(accounting.ManaRefund, accounting.GasUsed)
	setTxStake(su, accounting.AccountingInfo.Originator, accounting.AccountingInfo.ContractID, stake)
	return nil, nil
}

// applyReceipt executes one incoming receipt against the staged state and
// appends the receipts it produces to newReceipts. Compensating receipts
// (refund, null callback result, mana accounting) are emitted even when the
// inner application fails, so value conservation and remote joins survive
// failures.
func (rt *Runtime) applyReceipt(su *state.StateDBUpdate, receipt *types.Receipt,
	newReceipts *[]*types.Receipt, blockIndex uint64, logs *[]string) error {
	var (
		amount         uint64
		callbackInfo   *types.CallbackInfo
		manaAccounting types.ManaAccounting
	)
	receiverExists := true

	receiver, ok := getAccount(su, receipt.Receiver)
	var receipts []*types.Receipt
	var err error
	if ok {
		switch body := receipt.Body.(type) {
		case *types.AsyncCall:
			amount = body.Amount
			switch {
			case len(body.MethodName) == 0:
				if amount > 0 {
					receipts, err = rt.deposit(su, body.Amount, receipt.Receiver, receiver)
				}
				// Transferred amount is 0. Weird.
			case bytes.Equal(body.MethodName, SystemMethodCreateAccount):
				*logs = append(*logs, fmt.Sprintf("Account %s already exists", receipt.Receiver))
				receipts = []*types.Receipt{types.NewReceipt(common.SystemAccountID, receipt.Originator,
					createNonceWithNonce(receipt.Nonce, 0), &types.Refund{Amount: body.Amount})}
			case bytes.Equal(body.MethodName, SystemMethodDeploy):
				receipts, err = rt.deployCode(su, body, receipt.Receiver, receiver)
			default:
				callbackInfo = body.Callback
				receipts, err = rt.applyAsyncCall(su, body, receipt.Originator, receipt.Receiver,
					receipt.Nonce, receiver, &manaAccounting, blockIndex, logs)
			}
		case *types.CallbackResult:
			callbackInfo = &body.Info
			receipts, err = rt.applyCallback(su, body, receipt.Originator, receipt.Receiver,
				receipt.Nonce, receiver, &manaAccounting, blockIndex, logs)
		case *types.Refund:
			receiver.Amount += body.Amount
			setAccount(su, receipt.Receiver, receiver)
		case *types.ManaAccounting:
			receipts, err = rt.applyManaAccounting(su, body, blockIndex)
		default:
			err = errors.Errorf("undefined receipt body type %d", receipt.Body.Type())
		}
	} else {
		receiverExists = false
		if call, isCall := receipt.Body.(*types.AsyncCall); isCall {
			amount = call.Amount
			switch {
			case bytes.Equal(call.MethodName, SystemMethodCreateAccount):
				receipts, err = rt.systemCreateAccount(su, call, receipt.Receiver)
			case bytes.Equal(call.MethodName, SystemMethodDeploy):
				receipts, err = rt.systemDeploy(su, call, receipt.Receiver)
			default:
				err = errors.Errorf("receiver %s does not exist", receipt.Receiver)
			}
		} else {
			err = errors.Errorf("receiver %s does not exist", receipt.Receiver)
		}
	}

	if err == nil {
		*newReceipts = append(*newReceipts, receipts...)
	} else {
		if amount > 0 {
			refundSource := receipt.Receiver
			if !receiverExists {
				refundSource = common.SystemAccountID
			}
			*newReceipts = append(*newReceipts, types.NewReceipt(refundSource, receipt.Originator,
				createNonceWithNonce(receipt.Nonce, uint64(len(*newReceipts))),
				&types.Refund{Amount: amount}))
		}
		if callbackInfo != nil {
			// Unblock the remote join even though this leg failed.
			*newReceipts = append(*newReceipts, types.NewReceipt(receipt.Receiver, callbackInfo.Receiver,
				createNonceWithNonce(receipt.Nonce, uint64(len(*newReceipts))),
				types.NewCallbackResult(*callbackInfo, false, nil)))
		}
	}
	if manaAccounting.ManaRefund > 0 || manaAccounting.GasUsed > 0 {
		*newReceipts = append(*newReceipts, types.NewReceipt(receipt.Receiver,
			manaAccounting.AccountingInfo.Originator,
			createNonceWithNonce(receipt.Nonce, uint64(len(*newReceipts))),
			&types.ManaAccounting{
				AccountingInfo: manaAccounting.AccountingInfo,
				ManaRefund:     manaAccounting.ManaRefund,
				GasUsed:        manaAccounting.GasUsed,
			}))
	}
	return err
}
