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

package types

// Callback is the join record of a fan-out of promises. It lives in state
// under its id; arriving CallbackResults fill Results one slot at a time and
// the method runs once every slot is filled. It is never cached across apply
// calls.
type Callback struct {
	MethodName     []byte
	Args           []byte
	Results        []PromiseResult
	ResultCounter  uint64
	Mana           uint32
	AccountingInfo AccountingInfo
	Callback       *CallbackInfo `rlp:"nil"`
}

// NewCallback builds a join record awaiting numResults promise results.
func NewCallback(methodName, args []byte, numResults int, mana uint32, info AccountingInfo) *Callback {
	return &Callback{
		MethodName:     methodName,
		Args:           args,
		Results:        make([]PromiseResult, numResults),
		Mana:           mana,
		AccountingInfo: info,
	}
}

// Complete reports whether every awaited result has arrived.
func (c *Callback) Complete() bool {
	return c.ResultCounter == uint64(len(c.Results))
}
