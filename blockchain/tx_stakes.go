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
	"math"

	"github.com/meridian-network/meridian/params"
)

// TxStakeConfig parameterizes mana regeneration. All nodes must agree on it.
type TxStakeConfig struct {
	// RegenerationBlocks is the number of blocks a fully drained bucket
	// needs to refill to its active stake.
	RegenerationBlocks uint64
}

// DefaultTxStakeConfig returns the protocol regeneration parameters.
func DefaultTxStakeConfig() *TxStakeConfig {
	return &TxStakeConfig{RegenerationBlocks: params.ManaRegenerationBlocks}
}

// TxTotalStake is the mana bucket of one (originator, optional contract)
// scope. The bucket's capacity is its active stake; AvailableMana regenerates
// toward capacity as blocks pass and GasDebt records gas consumed on behalf
// of the scope.
type TxTotalStake struct {
	ActiveStake     uint64
	LastUpdateBlock uint64
	AvailableMana   uint32
	GasDebt         uint64
}

// NewTxTotalStake creates an empty bucket anchored at block.
func NewTxTotalStake(block uint64) *TxTotalStake {
	return &TxTotalStake{LastUpdateBlock: block}
}

func (ts *TxTotalStake) manaCap() uint32 {
	if ts.ActiveStake > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(ts.ActiveStake)
}

// AddActiveStake raises the bucket capacity and immediately credits the added
// amount.
func (ts *TxTotalStake) AddActiveStake(amount uint64) {
	ts.ActiveStake += amount
	credit := uint64(ts.AvailableMana) + amount
	if credit > uint64(ts.manaCap()) {
		credit = uint64(ts.manaCap())
	}
	ts.AvailableMana = uint32(credit)
}

// Update regenerates mana for the blocks elapsed since the last update.
// Regeneration is proportional to the active stake and bounded by it.
func (ts *TxTotalStake) Update(block uint64, config *TxStakeConfig) {
	if block <= ts.LastUpdateBlock {
		return
	}
	elapsed := block - ts.LastUpdateBlock
	ts.LastUpdateBlock = block

	perBlock := ts.ActiveStake / config.RegenerationBlocks
	if perBlock == 0 && ts.ActiveStake > 0 {
		perBlock = 1
	}
	regenerated := uint64(ts.AvailableMana)
	if elapsed >= config.RegenerationBlocks {
		regenerated = uint64(ts.manaCap())
	} else {
		regenerated += elapsed * perBlock
		if regenerated > uint64(ts.manaCap()) {
			regenerated = uint64(ts.manaCap())
		}
	}
	ts.AvailableMana = uint32(regenerated)
}

// ChargeMana debits mana from the bucket. Callers must check AvailableMana
// first.
func (ts *TxTotalStake) ChargeMana(mana uint32) {
	if mana > ts.AvailableMana {
		logger.WithField("mana", mana).Panic("mana charge exceeds availability")
	}
	ts.AvailableMana -= mana
}

// RefundManaAndChargeGas returns unused mana to the bucket and records the
// gas a finished call consumed.
func (ts *TxTotalStake) RefundManaAndChargeGas(manaRefund uint32, gasUsed uint64) {
	refunded := uint64(ts.AvailableMana) + uint64(manaRefund)
	if refunded > uint64(ts.manaCap()) {
		refunded = uint64(ts.manaCap())
	}
	ts.AvailableMana = uint32(refunded)
	ts.GasDebt += gasUsed
}
