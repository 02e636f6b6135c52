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
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/meridian-network/meridian/blockchain/types"
)

var logger = logrus.WithField("module", "vm")

var (
	errGasExhausted     = errors.New("gas limit exhausted")
	errManaExhausted    = errors.New("mana exhausted")
	errNoMemoryExport   = errors.New("wasm memory export missing")
	errBadPromiseIndex  = errors.New("bad promise index")
	errBadResultIndex   = errors.New("bad result index")
	errMemoryOutOfRange = errors.New("memory access out of range")
)

// WASMExecutor runs contract code under wasmer. One engine is shared across
// invocations; each Execute compiles into a fresh store and instance so no
// state leaks between calls.
type WASMExecutor struct {
	engine *wasmer.Engine
}

// NewWASMExecutor creates the executor backing production async calls.
func NewWASMExecutor() *WASMExecutor {
	return &WASMExecutor{engine: wasmer.NewEngine()}
}

// hostState is the per-invocation bridge between wasm imports and the
// runtime-ext.
type hostState struct {
	mem      *wasmer.Memory
	ext      External
	ctx      *Context
	config   *Config
	inputs   []types.PromiseResult
	promises []PromiseID

	gasUsed    uint64
	manaLeft   uint32
	balance    uint64
	logs       []string
	returnData ReturnData
}

func (h *hostState) read(ptr, length int32) ([]byte, error) {
	data := h.mem.Data()
	if ptr < 0 || length < 0 || int(ptr)+int(length) > len(data) {
		return nil, errMemoryOutOfRange
	}
	out := make([]byte, length)
	copy(out, data[ptr:ptr+length])
	return out, nil
}

func (h *hostState) write(ptr int32, value []byte) error {
	data := h.mem.Data()
	if ptr < 0 || int(ptr)+len(value) > len(data) {
		return errMemoryOutOfRange
	}
	copy(data[ptr:], value)
	return nil
}

func (h *hostState) useGas(amount uint64) error {
	if h.gasUsed+amount > h.config.GasLimit {
		return errGasExhausted
	}
	h.gasUsed += amount
	return nil
}

func (h *hostState) useMana(amount uint32) error {
	if h.manaLeft < amount {
		return errManaExhausted
	}
	h.manaLeft -= amount
	return nil
}

// Execute implements Executor. The module's exported function named by
// methodName is invoked with no wasm-level parameters; arguments, promise
// results and results flow through the env imports.
func (e *WASMExecutor) Execute(code []byte, methodName []byte, args []byte, inputs []types.PromiseResult,
	ext External, config *Config, ctx *Context) (*Output, error) {
	store := wasmer.NewStore(e.engine)
	module, err := wasmer.NewModule(store, code)
	if err != nil {
		return nil, errors.Wrap(err, "cannot compile wasm module")
	}

	host := &hostState{
		ext:      ext,
		ctx:      ctx,
		config:   config,
		inputs:   inputs,
		manaLeft: ctx.Mana,
		balance:  ctx.InitialBalance + ctx.ReceivedAmount,
	}

	instance, err := wasmer.NewInstance(module, e.imports(store, host, args))
	if err != nil {
		return nil, errors.Wrap(err, "cannot instantiate wasm module")
	}
	mem, err := instance.Exports.GetMemory("memory")
	if err != nil {
		return nil, errNoMemoryExport
	}
	host.mem = mem

	output := &Output{
		ManaLeft: host.manaLeft,
		Balance:  host.balance,
	}
	method, err := instance.Exports.GetFunction(string(methodName))
	if err != nil {
		output.Err = errors.Errorf("method %q not found", methodName)
		return output, nil
	}
	_, callErr := method()

	output.GasUsed = host.gasUsed
	output.ManaLeft = host.manaLeft
	output.Balance = host.balance
	output.Logs = host.logs
	output.ReturnData = host.returnData
	if output.ReturnData == nil {
		output.ReturnData = ReturnNone{}
	}
	if callErr != nil {
		output.Err = callErr
		logger.WithError(callErr).Debug("wasm call trapped")
	}
	return output, nil
}

func i32s(n int) []*wasmer.ValueType {
	kinds := make([]wasmer.ValueKind, n)
	for i := range kinds {
		kinds[i] = wasmer.I32
	}
	return wasmer.NewValueTypes(kinds...)
}

// imports wires the env module. The storage and promise host functions charge
// gas before doing work; the input, result, return and log functions charge
// none.
func (e *WASMExecutor) imports(store *wasmer.Store, h *hostState, args []byte) *wasmer.ImportObject {
	imports := wasmer.NewImportObject()

	gas := wasmer.NewFunction(store,
		wasmer.NewFunctionType(i32s(1), i32s(0)),
		func(in []wasmer.Value) ([]wasmer.Value, error) {
			return nil, h.useGas(uint64(uint32(in[0].I32())))
		})

	inputLen := wasmer.NewFunction(store,
		wasmer.NewFunctionType(i32s(0), i32s(1)),
		func(in []wasmer.Value) ([]wasmer.Value, error) {
			return []wasmer.Value{wasmer.NewI32(int32(len(args)))}, nil
		})

	inputRead := wasmer.NewFunction(store,
		wasmer.NewFunctionType(i32s(1), i32s(0)),
		func(in []wasmer.Value) ([]wasmer.Value, error) {
			return nil, h.write(in[0].I32(), args)
		})

	resultCount := wasmer.NewFunction(store,
		wasmer.NewFunctionType(i32s(0), i32s(1)),
		func(in []wasmer.Value) ([]wasmer.Value, error) {
			return []wasmer.Value{wasmer.NewI32(int32(len(h.inputs)))}, nil
		})

	resultIsOk := wasmer.NewFunction(store,
		wasmer.NewFunctionType(i32s(1), i32s(1)),
		func(in []wasmer.Value) ([]wasmer.Value, error) {
			idx := int(in[0].I32())
			if idx < 0 || idx >= len(h.inputs) {
				return nil, errBadResultIndex
			}
			ok := int32(0)
			if h.inputs[idx].Ok {
				ok = 1
			}
			return []wasmer.Value{wasmer.NewI32(ok)}, nil
		})

	resultLen := wasmer.NewFunction(store,
		wasmer.NewFunctionType(i32s(1), i32s(1)),
		func(in []wasmer.Value) ([]wasmer.Value, error) {
			idx := int(in[0].I32())
			if idx < 0 || idx >= len(h.inputs) {
				return nil, errBadResultIndex
			}
			return []wasmer.Value{wasmer.NewI32(int32(len(h.inputs[idx].Value)))}, nil
		})

	resultRead := wasmer.NewFunction(store,
		wasmer.NewFunctionType(i32s(2), i32s(0)),
		func(in []wasmer.Value) ([]wasmer.Value, error) {
			idx := int(in[0].I32())
			if idx < 0 || idx >= len(h.inputs) {
				return nil, errBadResultIndex
			}
			return nil, h.write(in[1].I32(), h.inputs[idx].Value)
		})

	storageWrite := wasmer.NewFunction(store,
		wasmer.NewFunctionType(i32s(4), i32s(0)),
		func(in []wasmer.Value) ([]wasmer.Value, error) {
			if err := h.useGas(uint64(in[1].I32()+in[3].I32()) + 10); err != nil {
				return nil, err
			}
			key, err := h.read(in[0].I32(), in[1].I32())
			if err != nil {
				return nil, err
			}
			value, err := h.read(in[2].I32(), in[3].I32())
			if err != nil {
				return nil, err
			}
			return nil, h.ext.StorageSet(key, value)
		})

	storageRead := wasmer.NewFunction(store,
		wasmer.NewFunctionType(i32s(3), i32s(1)),
		func(in []wasmer.Value) ([]wasmer.Value, error) {
			if err := h.useGas(uint64(in[1].I32()) + 10); err != nil {
				return nil, err
			}
			key, err := h.read(in[0].I32(), in[1].I32())
			if err != nil {
				return nil, err
			}
			value, ok, err := h.ext.StorageGet(key)
			if err != nil {
				return nil, err
			}
			if !ok {
				return []wasmer.Value{wasmer.NewI32(int32(-1))}, nil
			}
			if err := h.write(in[2].I32(), value); err != nil {
				return nil, err
			}
			return []wasmer.Value{wasmer.NewI32(int32(len(value)))}, nil
		})

	storageRemove := wasmer.NewFunction(store,
		wasmer.NewFunctionType(i32s(2), i32s(0)),
		func(in []wasmer.Value) ([]wasmer.Value, error) {
			if err := h.useGas(uint64(in[1].I32()) + 10); err != nil {
				return nil, err
			}
			key, err := h.read(in[0].I32(), in[1].I32())
			if err != nil {
				return nil, err
			}
			return nil, h.ext.StorageRemove(key)
		})

	// promise_create(receiverPtr, receiverLen, methodPtr, methodLen,
	// argsPtr, argsLen, mana, amountLo, amountHi) -> promise index
	promiseCreate := wasmer.NewFunction(store,
		wasmer.NewFunctionType(i32s(9), i32s(1)),
		func(in []wasmer.Value) ([]wasmer.Value, error) {
			if err := h.useGas(100); err != nil {
				return nil, err
			}
			mana := uint32(in[6].I32())
			if err := h.useMana(mana + 1); err != nil {
				return nil, err
			}
			receiver, err := h.read(in[0].I32(), in[1].I32())
			if err != nil {
				return nil, err
			}
			method, err := h.read(in[2].I32(), in[3].I32())
			if err != nil {
				return nil, err
			}
			callArgs, err := h.read(in[4].I32(), in[5].I32())
			if err != nil {
				return nil, err
			}
			amount := uint64(uint32(in[7].I32())) | uint64(uint32(in[8].I32()))<<32
			if amount > h.balance {
				return nil, errors.New("promise amount exceeds balance")
			}
			h.balance -= amount
			pid, err := h.ext.PromiseCreate(string(receiver), method, callArgs, mana, amount)
			if err != nil {
				return nil, err
			}
			h.promises = append(h.promises, pid)
			return []wasmer.Value{wasmer.NewI32(int32(len(h.promises) - 1))}, nil
		})

	// promise_then(promiseIdx, methodPtr, methodLen, argsPtr, argsLen, mana)
	// -> promise index
	promiseThen := wasmer.NewFunction(store,
		wasmer.NewFunctionType(i32s(6), i32s(1)),
		func(in []wasmer.Value) ([]wasmer.Value, error) {
			if err := h.useGas(100); err != nil {
				return nil, err
			}
			idx := int(in[0].I32())
			if idx < 0 || idx >= len(h.promises) {
				return nil, errBadPromiseIndex
			}
			mana := uint32(in[5].I32())
			if err := h.useMana(mana); err != nil {
				return nil, err
			}
			method, err := h.read(in[1].I32(), in[2].I32())
			if err != nil {
				return nil, err
			}
			callArgs, err := h.read(in[3].I32(), in[4].I32())
			if err != nil {
				return nil, err
			}
			pid, err := h.ext.PromiseThen(h.promises[idx], method, callArgs, mana)
			if err != nil {
				return nil, err
			}
			h.promises = append(h.promises, pid)
			return []wasmer.Value{wasmer.NewI32(int32(len(h.promises) - 1))}, nil
		})

	returnValue := wasmer.NewFunction(store,
		wasmer.NewFunctionType(i32s(2), i32s(0)),
		func(in []wasmer.Value) ([]wasmer.Value, error) {
			value, err := h.read(in[0].I32(), in[1].I32())
			if err != nil {
				return nil, err
			}
			h.returnData = ReturnValue{Data: value}
			return nil, nil
		})

	returnPromise := wasmer.NewFunction(store,
		wasmer.NewFunctionType(i32s(1), i32s(0)),
		func(in []wasmer.Value) ([]wasmer.Value, error) {
			idx := int(in[0].I32())
			if idx < 0 || idx >= len(h.promises) {
				return nil, errBadPromiseIndex
			}
			h.returnData = ReturnPromise{ID: h.promises[idx]}
			return nil, nil
		})

	logFn := wasmer.NewFunction(store,
		wasmer.NewFunctionType(i32s(2), i32s(0)),
		func(in []wasmer.Value) ([]wasmer.Value, error) {
			msg, err := h.read(in[0].I32(), in[1].I32())
			if err != nil {
				return nil, err
			}
			h.logs = append(h.logs, "LOG: "+string(msg))
			return nil, nil
		})

	imports.Register("env", map[string]wasmer.IntoExtern{
		"gas":            gas,
		"input_len":      inputLen,
		"input_read":     inputRead,
		"result_count":   resultCount,
		"result_is_ok":   resultIsOk,
		"result_len":     resultLen,
		"result_read":    resultRead,
		"storage_write":  storageWrite,
		"storage_read":   storageRead,
		"storage_remove": storageRemove,
		"promise_create": promiseCreate,
		"promise_then":   promiseThen,
		"return_value":   returnValue,
		"return_promise": returnPromise,
		"log":            logFn,
	})
	return imports
}
