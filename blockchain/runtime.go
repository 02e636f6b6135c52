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
	metrics "github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"

	"github.com/meridian-network/meridian/blockchain/state"
	"github.com/meridian-network/meridian/blockchain/types"
	"github.com/meridian-network/meridian/blockchain/vm"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/params"
	"github.com/meridian-network/meridian/storage"
)

var logger = logrus.WithField("module", "blockchain")

var (
	txAppliedMeter      = metrics.GetOrRegisterMeter("runtime/tx/applied", nil)
	txFailedMeter       = metrics.GetOrRegisterMeter("runtime/tx/failed", nil)
	receiptAppliedMeter = metrics.GetOrRegisterMeter("runtime/receipt/applied", nil)
	receiptFailedMeter  = metrics.GetOrRegisterMeter("runtime/receipt/failed", nil)
)

// ApplyState is the input anchor of one apply step.
type ApplyState struct {
	Root            common.Hash
	ShardID         uint64
	BlockIndex      uint64
	ParentBlockHash common.Hash
}

// ApplyResult is everything one apply step produced.
type ApplyResult struct {
	Root               common.Hash
	ShardID            uint64
	DBChanges          storage.DBChanges
	AuthorityProposals []*types.AuthorityStake
	NewReceipts        map[uint64][]*types.Receipt
	TxResults          []*types.TransactionResult
}

// Runtime is the deterministic state-transition engine of one shard. It owns
// no mutable state of its own between Apply calls; everything lives in the
// backing StateDB.
type Runtime struct {
	stateDB  *storage.StateDB
	executor vm.Executor

	codeCache             common.Cache
	defaultAccountTxStake uint64
}

// NewRuntime wires a runtime over the given committed state and executor.
func NewRuntime(stateDB *storage.StateDB, executor vm.Executor) *Runtime {
	return &Runtime{
		stateDB:               stateDB,
		executor:              executor,
		codeCache:             common.NewCache(params.CodeCacheSize),
		defaultAccountTxStake: params.DefaultAccountTxStake,
	}
}

// StateDB exposes the committed state backing the runtime.
func (rt *Runtime) StateDB() *storage.StateDB {
	return rt.stateDB
}

// getCode loads the receiver's code blob, via the code cache when the hash is
// already known. Staged deploys are visible because a redeploy changes the
// code hash.
func (rt *Runtime) getCode(su *state.StateDBUpdate, accountID string, codeHash common.Hash) ([]byte, bool) {
	if cached, ok := rt.codeCache.Get(codeHash); ok {
		return cached.([]byte), true
	}
	code, ok := getCodeBytes(su, accountID)
	if !ok {
		return nil, false
	}
	rt.codeCache.Add(codeHash, code)
	return code, true
}

func routeReceipts(receipts []*types.Receipt, result *types.TransactionResult, newReceipts map[uint64][]*types.Receipt) {
	for _, receipt := range receipts {
		result.Receipts = append(result.Receipts, receipt.Nonce)
		shardID := receipt.ShardID()
		newReceipts[shardID] = append(newReceipts[shardID], receipt)
	}
}

// processTransaction applies one signed transaction with per-input failure
// isolation: staged changes are committed on success and rolled back on
// failure.
func (rt *Runtime) processTransaction(su *state.StateDBUpdate, blockIndex uint64, tx *types.SignedTransaction,
	newReceipts map[uint64][]*types.Receipt, authorityProposals *[]*types.AuthorityStake) *types.TransactionResult {
	result := &types.TransactionResult{}
	receipts, err := rt.applySignedTransaction(su, blockIndex, tx, authorityProposals)
	if err != nil {
		su.Rollback()
		result.Logs = append(result.Logs, "Runtime error: "+err.Error())
		result.Status = types.TxStatusFailed
		txFailedMeter.Mark(1)
		logger.WithFields(logrus.Fields{"tx": tx.Hash(), "err": err}).Debug("Transaction failed")
		return result
	}
	routeReceipts(receipts, result, newReceipts)
	su.Commit()
	result.Status = types.TxStatusCompleted
	txAppliedMeter.Mark(1)
	return result
}

// processReceipt applies one incoming receipt with the same failure isolation
// as processTransaction. Receipts routed to the wrong shard fail without
// touching state.
func (rt *Runtime) processReceipt(su *state.StateDBUpdate, shardID, blockIndex uint64, receipt *types.Receipt,
	newReceipts map[uint64][]*types.Receipt) *types.TransactionResult {
	result := &types.TransactionResult{}
	if receipt.ShardID() != shardID {
		result.Status = types.TxStatusFailed
		result.Logs = append(result.Logs, "receipt sent to the wrong shard")
		receiptFailedMeter.Mark(1)
		return result
	}
	var produced []*types.Receipt
	err := rt.applyReceipt(su, receipt, &produced, blockIndex, &result.Logs)
	routeReceipts(produced, result, newReceipts)
	if err != nil {
		su.Rollback()
		result.Logs = append(result.Logs, "Runtime error: "+err.Error())
		result.Status = types.TxStatusFailed
		receiptFailedMeter.Mark(1)
		logger.WithFields(logrus.Fields{"nonce": receipt.Nonce, "err": err}).Debug("Receipt failed")
		return result
	}
	su.Commit()
	result.Status = types.TxStatusCompleted
	receiptAppliedMeter.Mark(1)
	return result
}

// Apply runs one deterministic state transition: receipts from the previous
// block first, then this block's transactions, each with commit-or-rollback
// isolation, finally folding the staged overlay into a write set and the new
// root.
func (rt *Runtime) Apply(applyState *ApplyState, prevReceipts []*types.Receipt,
	transactions []*types.SignedTransaction) (*ApplyResult, error) {
	su := state.NewStateDBUpdate(rt.stateDB, applyState.Root)
	newReceipts := make(map[uint64][]*types.Receipt)
	authorityProposals := []*types.AuthorityStake{}
	txResults := make([]*types.TransactionResult, 0, len(prevReceipts)+len(transactions))

	for _, receipt := range prevReceipts {
		txResults = append(txResults, rt.processReceipt(su, applyState.ShardID, applyState.BlockIndex,
			receipt, newReceipts))
	}
	for _, tx := range transactions {
		txResults = append(txResults, rt.processTransaction(su, applyState.BlockIndex, tx,
			newReceipts, &authorityProposals))
	}
	changes, root, err := su.Finalize()
	if err != nil {
		return nil, err
	}
	return &ApplyResult{
		Root:               root,
		ShardID:            applyState.ShardID,
		DBChanges:          changes,
		AuthorityProposals: authorityProposals,
		NewReceipts:        newReceipts,
		TxResults:          txResults,
	}, nil
}
