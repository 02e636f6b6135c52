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
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/meridian-network/meridian/blockchain/types"
)

// MockExecutor is a deterministic in-process Executor implementing the
// method surface of the runtest contract. It lets runtime behavior be
// exercised without compiling wasm binaries.
type MockExecutor struct{}

// mockGasPerCall is the flat gas cost the mock reports per invocation.
const mockGasPerCall = 10

// EncodeInt encodes an int32 the way the runtest contract does.
func EncodeInt(v int32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return buf
}

// DecodeInts splits a concatenation of encoded int32s.
func DecodeInts(b []byte) []int32 {
	out := make([]int32, 0, len(b)/4)
	for len(b) >= 4 {
		out = append(out, int32(binary.LittleEndian.Uint32(b[:4])))
		b = b[4:]
	}
	return out
}

// Execute implements Executor.
func (m *MockExecutor) Execute(code []byte, methodName []byte, args []byte, inputs []types.PromiseResult,
	ext External, config *Config, ctx *Context) (*Output, error) {
	output := &Output{
		GasUsed:  mockGasPerCall,
		ManaLeft: ctx.Mana,
		Balance:  ctx.InitialBalance + ctx.ReceivedAmount,
		Logs:     nil,
	}
	switch string(methodName) {
	case "run_test":
		output.ReturnData = ReturnValue{Data: EncodeInt(10)}

	case "run_test_with_storage_change":
		if err := ext.StorageSet([]byte("test_key"), EncodeInt(10)); err != nil {
			return nil, err
		}
		output.ReturnData = ReturnNone{}

	case "sum_with_input":
		sum := int32(0)
		for _, v := range DecodeInts(args) {
			sum += v
		}
		for _, res := range inputs {
			if !res.Ok {
				output.Err = errors.New("awaited promise failed")
				return output, nil
			}
			for _, v := range DecodeInts(res.Value) {
				sum += v
			}
		}
		output.ReturnData = ReturnValue{Data: EncodeInt(sum)}

	case "log_something":
		output.Logs = append(output.Logs, "LOG: hello")
		output.ReturnData = ReturnNone{}

	case "create_promise":
		// args name the receiver; fan out one call and join on its result.
		if ctx.Mana < 2 {
			output.Err = errors.New("not enough mana to create promises")
			return output, nil
		}
		pid, err := ext.PromiseCreate(string(args), []byte("run_test"), nil, 0, 0)
		if err != nil {
			output.Err = err
			return output, nil
		}
		cb, err := ext.PromiseThen(pid, []byte("sum_with_input"), nil, 0)
		if err != nil {
			output.Err = err
			return output, nil
		}
		output.ManaLeft = ctx.Mana - 2
		output.ReturnData = ReturnPromise{ID: cb}

	default:
		output.Err = errors.Errorf("method %q not found", methodName)
	}
	return output, nil
}
