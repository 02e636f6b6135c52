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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-network/meridian/blockchain/state"
	"github.com/meridian-network/meridian/blockchain/types"
)

func TestTxTotalStakeAddActiveStakeFillsBucket(t *testing.T) {
	stake := NewTxTotalStake(0)
	stake.AddActiveStake(100)
	assert.Equal(t, uint64(100), stake.ActiveStake)
	assert.Equal(t, uint32(100), stake.AvailableMana)
}

func TestTxTotalStakeChargeAndRegenerate(t *testing.T) {
	config := &TxStakeConfig{RegenerationBlocks: 100}
	stake := NewTxTotalStake(0)
	stake.AddActiveStake(1000)
	stake.ChargeMana(600)
	assert.Equal(t, uint32(400), stake.AvailableMana)

	// 1000 stake over 100 blocks regenerates 10 mana per block.
	stake.Update(10, config)
	assert.Equal(t, uint32(500), stake.AvailableMana)

	// Regeneration never exceeds the active stake.
	stake.Update(1000, config)
	assert.Equal(t, uint32(1000), stake.AvailableMana)
}

func TestTxTotalStakeSmallStakeRegeneratesSlowly(t *testing.T) {
	config := &TxStakeConfig{RegenerationBlocks: 100}
	stake := NewTxTotalStake(0)
	stake.AddActiveStake(10)
	stake.ChargeMana(10)
	assert.Equal(t, uint32(0), stake.AvailableMana)

	// Stakes below the regeneration window still gain one mana per block.
	stake.Update(3, config)
	assert.Equal(t, uint32(3), stake.AvailableMana)
}

func TestTxTotalStakeUpdateIsIdempotentForPastBlocks(t *testing.T) {
	config := &TxStakeConfig{RegenerationBlocks: 100}
	stake := NewTxTotalStake(10)
	stake.AddActiveStake(100)
	stake.ChargeMana(50)
	stake.Update(5, config)
	assert.Equal(t, uint32(50), stake.AvailableMana)
	assert.Equal(t, uint64(10), stake.LastUpdateBlock)
}

func TestTxTotalStakeRefundAndGasDebt(t *testing.T) {
	stake := NewTxTotalStake(0)
	stake.AddActiveStake(100)
	stake.ChargeMana(40)
	stake.RefundManaAndChargeGas(30, 1234)
	assert.Equal(t, uint32(90), stake.AvailableMana)
	assert.Equal(t, uint64(1234), stake.GasDebt)

	// Refund is clamped at the bucket capacity.
	stake.RefundManaAndChargeGas(1000, 1)
	assert.Equal(t, uint32(100), stake.AvailableMana)
	assert.Equal(t, uint64(1235), stake.GasDebt)
}

func TestTryChargeManaPrefersContractScope(t *testing.T) {
	runtime, _, root := newTestRuntime(t)
	su := state.NewStateDBUpdate(runtime.StateDB(), root)
	scoped := NewTxTotalStake(0)
	scoped.AddActiveStake(500)
	setTxStake(su, aliceAccount(), bobAccount(), scoped)
	su.Commit()

	info, ok := runtime.tryChargeMana(su, 0, aliceAccount(), bobAccount(), 5)
	require.True(t, ok)
	assert.Equal(t, types.AccountingInfo{Originator: aliceAccount(), ContractID: bobAccount()}, info)

	stored, found := getTxStake(su, aliceAccount(), bobAccount())
	require.True(t, found)
	assert.Equal(t, uint32(495), stored.AvailableMana)
}

func TestTryChargeManaFallsBackToGlobalScope(t *testing.T) {
	runtime, _, root := newTestRuntime(t)
	su := state.NewStateDBUpdate(runtime.StateDB(), root)

	info, ok := runtime.tryChargeMana(su, 0, aliceAccount(), bobAccount(), 5)
	require.True(t, ok)
	assert.Equal(t, types.AccountingInfo{Originator: aliceAccount()}, info)

	stored, found := getTxStake(su, aliceAccount(), "")
	require.True(t, found)
	assert.Equal(t, uint32(995), stored.AvailableMana)
}

func TestTryChargeManaInsufficient(t *testing.T) {
	runtime, _, root := newTestRuntime(t)
	su := state.NewStateDBUpdate(runtime.StateDB(), root)

	_, ok := runtime.tryChargeMana(su, 0, aliceAccount(), "", 100000)
	assert.False(t, ok)
}
