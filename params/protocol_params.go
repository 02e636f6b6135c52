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

package params

const (
	// ManaRegenerationBlocks is the number of blocks over which a fully
	// drained mana bucket refills to its active stake.
	ManaRegenerationBlocks uint64 = 100

	// DefaultAccountTxStake is the active stake installed for accounts
	// created through the system create-account method.
	DefaultAccountTxStake uint64 = 100

	// CodeCacheSize bounds the number of contract code blobs kept in memory,
	// keyed by code hash.
	CodeCacheSize = 64

	// WasmGasLimit is the per-invocation gas ceiling handed to the executor.
	WasmGasLimit uint64 = 1000000

	// WasmMaxMemoryPages is carried in the executor Config as MaxMemoryPages.
	// The wasmer executor does not enforce it on instance memory.
	WasmMaxMemoryPages = 32
)
