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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-network/meridian/blockchain/types"
	"github.com/meridian-network/meridian/blockchain/vm"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/crypto"
	"github.com/meridian-network/meridian/storage"
	"github.com/meridian-network/meridian/storage/database"
)

var testWasmBinary = []byte("\x00asm test binary")

func aliceAccount() string { return "alice.near" }
func bobAccount() string   { return "bob.near" }
func eveAccount() string   { return "eve.near" }

type testChainSpec struct {
	accounts    []GenesisAccount
	authorities []GenesisAuthority
	keys        map[string]crypto.SecretKey
}

func generateTestChainSpec(t *testing.T) *testChainSpec {
	t.Helper()
	spec := &testChainSpec{keys: make(map[string]crypto.SecretKey)}
	for _, fixture := range []struct {
		id      string
		balance uint64
		txStake uint64
	}{
		{aliceAccount(), 100, 1000},
		{bobAccount(), 0, 1000},
	} {
		publicKey, secretKey, err := crypto.GenerateKey()
		require.NoError(t, err)
		spec.keys[fixture.id] = secretKey
		spec.accounts = append(spec.accounts, GenesisAccount{
			ID:        fixture.id,
			PublicKey: publicKey.String(),
			Balance:   fixture.balance,
			TxStake:   fixture.txStake,
		})
	}
	spec.authorities = []GenesisAuthority{
		{AccountID: aliceAccount(), PublicKey: spec.accounts[0].PublicKey, Amount: 50},
	}
	return spec
}

func newTestRuntimeFromChainSpec(t *testing.T, spec *testChainSpec) (*Runtime, *StateViewer, common.Hash) {
	t.Helper()
	stateDB, err := storage.NewStateDB(database.NewMemDatabase())
	require.NoError(t, err)
	runtime := NewRuntime(stateDB, &vm.MockExecutor{})
	root, err := runtime.ApplyGenesisState(spec.accounts, testWasmBinary, spec.authorities)
	require.NoError(t, err)
	return runtime, NewStateViewer(stateDB), root
}

func newTestRuntime(t *testing.T) (*Runtime, *StateViewer, common.Hash) {
	t.Helper()
	return newTestRuntimeFromChainSpec(t, generateTestChainSpec(t))
}

func defaultCodeHash() common.Hash {
	return crypto.Keccak256Hash(testWasmBinary)
}

func accountPublicKey(t *testing.T, spec *testChainSpec, id string) crypto.PublicKey {
	t.Helper()
	for _, account := range spec.accounts {
		if account.ID == id {
			key, err := crypto.ParsePublicKey(account.PublicKey)
			require.NoError(t, err)
			return key
		}
	}
	t.Fatalf("no such fixture account %s", id)
	return nil
}

func flattenReceipts(byShard map[uint64][]*types.Receipt) []*types.Receipt {
	out := []*types.Receipt{}
	for shard := uint64(0); shard < common.TotalShards; shard++ {
		out = append(out, byShard[shard]...)
	}
	return out
}

// applyAll mirrors block production on a single shard: it applies the inputs,
// commits, then keeps feeding emitted receipts back until none remain. One
// ApplyResult is returned per round.
func applyAll(t *testing.T, runtime *Runtime, root common.Hash,
	receipts []*types.Receipt, transactions []*types.SignedTransaction) []*ApplyResult {
	t.Helper()
	results := []*ApplyResult{}
	for {
		applyState := &ApplyState{Root: root, ShardID: 0, BlockIndex: 0}
		result, err := runtime.Apply(applyState, receipts, transactions)
		require.NoError(t, err)
		require.NoError(t, runtime.StateDB().Commit(result.DBChanges))
		results = append(results, result)
		transactions = nil
		receipts = flattenReceipts(result.NewReceipts)
		root = result.Root
		if len(receipts) == 0 {
			return results
		}
	}
}

func signedTx(body types.TxInternalData) *types.SignedTransaction {
	return types.NewSignedTransaction(crypto.DefaultSignature, body)
}
