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
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/crypto"
)

var (
	errInvalidOriginator = errors.New("invalid originator account_id")
	errInvalidContractID = errors.New("invalid contract_id")
	errZeroAmount        = errors.New("sending 0 amount of money")
	errNoMana            = errors.New("function call requires at least 1 mana")
)

// tryChargeMana searches the contract-scoped bucket first, then the global
// one, and charges the first bucket that can cover mana. It returns the
// accounting scope that paid.
func (rt *Runtime) tryChargeMana(su *state.StateDBUpdate, blockIndex uint64, originator, contractID string, mana uint32) (types.AccountingInfo, bool) {
	config := DefaultTxStakeConfig()
	options := make([]types.AccountingInfo, 0, 2)
	if contractID != "" {
		// Trying to use contract specific quota first
		options = append(options, types.AccountingInfo{Originator: originator, ContractID: contractID})
	}
	// Trying to use global quota
	options = append(options, types.AccountingInfo{Originator: originator})
	for _, info := range options {
		stake, ok := getTxStake(su, info.Originator, info.ContractID)
		if !ok {
			continue
		}
		stake.Update(blockIndex, config)
		if stake.AvailableMana >= mana {
			stake.ChargeMana(mana)
			setTxStake(su, info.Originator, info.ContractID, stake)
			return info, true
		}
	}
	return types.AccountingInfo{}, false
}

func (rt *Runtime) sendMoney(su *state.StateDBUpdate, tx *types.TxInternalDataSendMoney, hash common.Hash,
	sender *types.Account, info types.AccountingInfo) ([]*types.Receipt, error) {
	if tx.Amount == 0 {
		return nil, errZeroAmount
	}
	if sender.Amount < tx.Amount {
		return nil, errors.Errorf("account %s tries to send %d, but has staked %d and only has %d",
			tx.Originator, tx.Amount, sender.Staked, sender.Amount)
	}
	sender.Amount -= tx.Amount
	setAccount(su, tx.Originator, sender)
	receipt := types.NewReceipt(tx.Originator, tx.Receiver, createNonceWithNonce(hash, 0),
		// Empty method name is used for deposit
		types.NewAsyncCall(nil, nil, tx.Amount, 0, info))
	return []*types.Receipt{receipt}, nil
}

func (rt *Runtime) staking(su *state.StateDBUpdate, tx *types.TxInternalDataStake, senderAccountID string,
	sender *types.Account, authorityProposals *[]*types.AuthorityStake) ([]*types.Receipt, error) {
	if sender.Amount < tx.Amount {
		return nil, errors.Errorf("account %s tries to stake %d, but has staked %d and only has %d",
			tx.Originator, tx.Amount, sender.Staked, sender.Amount)
	}
	if len(sender.PublicKeys) == 0 {
		return nil, errors.Errorf("account %s has no public keys to stake with", tx.Originator)
	}
	*authorityProposals = append(*authorityProposals, &types.AuthorityStake{
		AccountID: senderAccountID,
		PublicKey: sender.PublicKeys[0],
		Amount:    tx.Amount,
	})
	sender.Amount -= tx.Amount
	sender.Staked += tx.Amount
	setAccount(su, senderAccountID, sender)
	return nil, nil
}

func (rt *Runtime) createAccount(su *state.StateDBUpdate, tx *types.TxInternalDataCreateAccount, hash common.Hash,
	sender *types.Account, info types.AccountingInfo) ([]*types.Receipt, error) {
	if !common.IsValidAccountID(tx.NewAccountID) {
		return nil, errors.Errorf("account %s does not match requirements", tx.NewAccountID)
	}
	if sender.Amount < tx.Amount {
		return nil, errors.Errorf("account %s tries to create new account with %d, but only has %d",
			tx.Originator, tx.Amount, sender.Amount)
	}
	sender.Amount -= tx.Amount
	setAccount(su, tx.Originator, sender)
	receipt := types.NewReceipt(tx.Originator, tx.NewAccountID, createNonceWithNonce(hash, 0),
		types.NewAsyncCall(SystemMethodCreateAccount, tx.PublicKey, tx.Amount, 0, info))
	return []*types.Receipt{receipt}, nil
}

func (rt *Runtime) deployContract(tx *types.TxInternalDataDeployContract, hash common.Hash,
	info types.AccountingInfo) ([]*types.Receipt, error) {
	args, err := encodeDeployArgs(tx.PublicKey, tx.Code)
	if err != nil {
		return nil, errors.Wrap(err, "cannot encode args")
	}
	receipt := types.NewReceipt(tx.Originator, tx.ContractID, createNonceWithNonce(hash, 0),
		types.NewAsyncCall(SystemMethodDeploy, args, 0, 0, info))
	return []*types.Receipt{receipt}, nil
}

func (rt *Runtime) swapKey(su *state.StateDBUpdate, tx *types.TxInternalDataSwapKey, sender *types.Account) ([]*types.Receipt, error) {
	curKey, err := crypto.DecodePublicKey(tx.CurKey)
	if err != nil {
		return nil, errors.New("cannot decode public key")
	}
	newKey, err := crypto.DecodePublicKey(tx.NewKey)
	if err != nil {
		return nil, errors.New("cannot decode public key")
	}
	kept := sender.PublicKeys[:0]
	for _, key := range sender.PublicKeys {
		if !key.Equal(curKey) {
			kept = append(kept, key)
		}
	}
	if len(kept) == len(sender.PublicKeys) {
		return nil, errors.Errorf("account %s does not have public key %s", tx.Originator, curKey)
	}
	sender.PublicKeys = append(kept, newKey)
	setAccount(su, tx.Originator, sender)
	return nil, nil
}

func (rt *Runtime) callFunction(su *state.StateDBUpdate, tx *types.TxInternalDataFunctionCall, hash common.Hash,
	sender *types.Account, info types.AccountingInfo, mana uint32) ([]*types.Receipt, error) {
	if mana == 0 {
		return nil, errNoMana
	}
	if sender.Amount < tx.Amount {
		return nil, errors.Errorf("account %s tries to call some contract with the amount %d, but has staked %d and only has %d",
			tx.Originator, tx.Amount, sender.Staked, sender.Amount)
	}
	sender.Amount -= tx.Amount
	setAccount(su, tx.Originator, sender)
	// One mana pays for this receipt, the remainder travels with the call.
	receipt := types.NewReceipt(tx.Originator, tx.ContractID, createNonceWithNonce(hash, 0),
		types.NewAsyncCall(tx.MethodName, tx.Args, tx.Amount, mana-1, info))
	return []*types.Receipt{receipt}, nil
}

// applySignedTransaction verifies and dispatches one signed transaction,
// staging its state effects and returning the receipts it emits.
func (rt *Runtime) applySignedTransaction(su *state.StateDBUpdate, blockIndex uint64,
	tx *types.SignedTransaction, authorityProposals *[]*types.AuthorityStake) ([]*types.Receipt, error) {
	senderAccountID := tx.Body.GetOriginator()
	if !common.IsValidAccountID(senderAccountID) {
		return nil, errInvalidOriginator
	}
	sender, ok := getAccount(su, senderAccountID)
	if !ok {
		return nil, errors.Errorf("sender %s does not exist", senderAccountID)
	}
	if tx.Body.GetNonce() <= sender.Nonce {
		return nil, errors.Errorf("transaction nonce %d must be larger than sender nonce %d",
			tx.Body.GetNonce(), sender.Nonce)
	}
	sender.Nonce = tx.Body.GetNonce()
	setAccount(su, senderAccountID, sender)

	contractID := tx.Body.GetContractID()
	if contractID != "" && !common.IsValidAccountID(contractID) {
		return nil, errInvalidContractID
	}
	mana := tx.Body.GetMana()
	info, charged := rt.tryChargeMana(su, blockIndex, senderAccountID, contractID, mana)
	if !charged {
		return nil, errors.Errorf("sender %s does not have enough mana %d", senderAccountID, mana)
	}
	switch body := tx.Body.(type) {
	case *types.TxInternalDataSendMoney:
		return rt.sendMoney(su, body, tx.Hash(), sender, info)
	case *types.TxInternalDataStake:
		return rt.staking(su, body, senderAccountID, sender, authorityProposals)
	case *types.TxInternalDataCreateAccount:
		return rt.createAccount(su, body, tx.Hash(), sender, info)
	case *types.TxInternalDataDeployContract:
		return rt.deployContract(body, tx.Hash(), info)
	case *types.TxInternalDataSwapKey:
		return rt.swapKey(su, body, sender)
	case *types.TxInternalDataFunctionCall:
		return rt.callFunction(su, body, tx.Hash(), sender, info, mana)
	}
	return nil, errors.Errorf("undefined transaction type %d", tx.Body.Type())
}
