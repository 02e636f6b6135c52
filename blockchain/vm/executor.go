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

package vm

import (
	"github.com/meridian-network/meridian/blockchain/types"
	"github.com/meridian-network/meridian/params"
)

// External is the host interface the runtime hands to the executor. It scopes
// storage to the executing account and turns promise calls into receipts and
// callback join records.
type External interface {
	StorageSet(key, value []byte) error
	StorageGet(key []byte) ([]byte, bool, error)
	StorageRemove(key []byte) error

	// PromiseCreate registers an outbound async call and returns its promise.
	PromiseCreate(receiver string, methodName, args []byte, mana uint32, amount uint64) (PromiseID, error)

	// PromiseThen attaches a joining callback to a previously created promise
	// and returns the callback promise.
	PromiseThen(promise PromiseID, methodName, args []byte, mana uint32) (PromiseID, error)
}

// PromiseID identifies a pending promise created during one execution.
type PromiseID interface {
	isPromiseID()
}

// ReceiptPromise is a single outbound async call, identified by the nonce of
// its receipt.
type ReceiptPromise struct {
	ID []byte
}

// CallbackPromise is a pending join record awaiting promise results.
type CallbackPromise struct {
	ID []byte
}

// JoinerPromise groups several receipt promises so one callback can await all
// of them.
type JoinerPromise struct {
	IDs [][]byte
}

func (ReceiptPromise) isPromiseID()  {}
func (CallbackPromise) isPromiseID() {}
func (JoinerPromise) isPromiseID()   {}

// ReturnData is what a finished execution handed back: a value, nothing, or a
// promise whose result stands in for the call's result.
type ReturnData interface {
	isReturnData()
}

// ReturnValue carries an immediate result value.
type ReturnValue struct {
	Data []byte
}

// ReturnNone is an execution that finished without a result.
type ReturnNone struct{}

// ReturnPromise defers the call's result to a promise created during the
// execution.
type ReturnPromise struct {
	ID PromiseID
}

func (ReturnValue) isReturnData()   {}
func (ReturnNone) isReturnData()    {}
func (ReturnPromise) isReturnData() {}

// Config bounds one execution.
type Config struct {
	GasLimit       uint64
	MaxMemoryPages uint32
}

// DefaultConfig returns the protocol execution bounds.
func DefaultConfig() *Config {
	return &Config{
		GasLimit:       params.WasmGasLimit,
		MaxMemoryPages: params.WasmMaxMemoryPages,
	}
}

// Context describes the call site of one execution. Nonce seeds the
// executor-visible identifier stream and must be unique per receipt.
type Context struct {
	InitialBalance uint64
	ReceivedAmount uint64
	Originator     string
	Receiver       string
	Mana           uint32
	BlockIndex     uint64
	Nonce          []byte
}

// Output is the result of one execution. Err carries an execution failure
// (bad method, trap, gas exhaustion); gas, mana, balance and logs are valid
// even when Err is set. Execute itself errors only when the call could not be
// prepared at all.
type Output struct {
	GasUsed    uint64
	ManaLeft   uint32
	Balance    uint64
	ReturnData ReturnData
	Logs       []string
	Err        error
}

// Executor runs contract code. Implementations must be deterministic: no
// clock, no randomness, no I/O beyond ext.
type Executor interface {
	Execute(code []byte, methodName []byte, args []byte, inputs []types.PromiseResult,
		ext External, config *Config, ctx *Context) (*Output, error)
}
