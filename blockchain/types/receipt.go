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

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/meridian-network/meridian/common"
)

// ReceiptBodyType tags the concrete body carried by a Receipt.
type ReceiptBodyType uint8

const (
	ReceiptBodyNewCall ReceiptBodyType = iota
	ReceiptBodyCallback
	ReceiptBodyRefund
	ReceiptBodyManaAccounting
)

var errUndefinedReceiptBody = errors.New("undefined receipt body type")

// ReceiptBody is one of AsyncCall, CallbackResult, Refund, ManaAccounting.
type ReceiptBody interface {
	Type() ReceiptBodyType
}

// AccountingInfo identifies the mana bucket that paid for a call: the
// originator plus an optional contract scope. An empty ContractID means the
// global bucket.
type AccountingInfo struct {
	Originator string
	ContractID string
}

// CallbackInfo points one awaited promise result at its slot in a callback
// join record.
type CallbackInfo struct {
	ID          []byte
	ResultIndex uint64
	Receiver    string
}

// NewCallbackInfo builds the pointer for slot resultIndex of callback id,
// resolving on receiver's shard.
func NewCallbackInfo(id []byte, resultIndex uint64, receiver string) *CallbackInfo {
	return &CallbackInfo{ID: id, ResultIndex: resultIndex, Receiver: receiver}
}

// PromiseResult is the outcome of one awaited promise. Ok distinguishes a
// present (possibly empty) value from a failed promise.
type PromiseResult struct {
	Ok    bool
	Value []byte
}

// AsyncCall asks the receiver to run a method (or, with an empty method name,
// to accept a deposit). Mana and the accounting scope travel with the call so
// follow-up promises can be paid for remotely.
type AsyncCall struct {
	MethodName     []byte
	Args           []byte
	Amount         uint64
	Mana           uint32
	AccountingInfo AccountingInfo
	Callback       *CallbackInfo `rlp:"nil"`
}

// NewAsyncCall builds a call without a callback attached.
func NewAsyncCall(methodName, args []byte, amount uint64, mana uint32, info AccountingInfo) *AsyncCall {
	return &AsyncCall{
		MethodName:     methodName,
		Args:           args,
		Amount:         amount,
		Mana:           mana,
		AccountingInfo: info,
	}
}

func (c *AsyncCall) Type() ReceiptBodyType { return ReceiptBodyNewCall }

// CallbackResult delivers one promise result to its callback slot.
type CallbackResult struct {
	Info   CallbackInfo
	Result PromiseResult
}

// NewCallbackResult builds a result delivery; ok set to false marks the
// awaited promise as failed.
func NewCallbackResult(info CallbackInfo, ok bool, value []byte) *CallbackResult {
	return &CallbackResult{Info: info, Result: PromiseResult{Ok: ok, Value: value}}
}

func (c *CallbackResult) Type() ReceiptBodyType { return ReceiptBodyCallback }

// Refund returns a deposit whose application failed downstream.
type Refund struct {
	Amount uint64
}

func (r *Refund) Type() ReceiptBodyType { return ReceiptBodyRefund }

// ManaAccounting settles a finished call against the mana bucket that paid
// for it: unused mana flows back, consumed gas is recorded.
type ManaAccounting struct {
	AccountingInfo AccountingInfo
	ManaRefund     uint32
	GasUsed        uint64
}

func (m *ManaAccounting) Type() ReceiptBodyType { return ReceiptBodyManaAccounting }

// Receipt is a cross-call message routed to the shard owning the receiver
// account. The nonce is the receipt's globally unique identity, derived from
// the identity of whatever produced it.
type Receipt struct {
	Originator string
	Receiver   string
	Nonce      common.Hash
	Body       ReceiptBody
}

// NewReceipt builds a receipt.
func NewReceipt(originator, receiver string, nonce common.Hash, body ReceiptBody) *Receipt {
	return &Receipt{Originator: originator, Receiver: receiver, Nonce: nonce, Body: body}
}

// ShardID returns the shard this receipt must be applied on.
func (r *Receipt) ShardID() uint64 {
	return common.AccountToShardID(r.Receiver)
}

type receiptRLP struct {
	Originator string
	Receiver   string
	Nonce      common.Hash
	Body       []byte
}

// EncodeRLP implements rlp.Encoder using the tag-then-payload serializer
// discipline for the body union.
func (r *Receipt) EncodeRLP(w io.Writer) error {
	body, err := encodeTaggedBody(byte(r.Body.Type()), r.Body)
	if err != nil {
		return err
	}
	return rlp.Encode(w, &receiptRLP{r.Originator, r.Receiver, r.Nonce, body})
}

// DecodeRLP implements rlp.Decoder.
func (r *Receipt) DecodeRLP(s *rlp.Stream) error {
	var enc receiptRLP
	if err := s.Decode(&enc); err != nil {
		return err
	}
	tag, payload, err := decodeTaggedBody(enc.Body)
	if err != nil {
		return err
	}
	var body ReceiptBody
	switch ReceiptBodyType(tag) {
	case ReceiptBodyNewCall:
		body = &AsyncCall{}
	case ReceiptBodyCallback:
		body = &CallbackResult{}
	case ReceiptBodyRefund:
		body = &Refund{}
	case ReceiptBodyManaAccounting:
		body = &ManaAccounting{}
	default:
		return errUndefinedReceiptBody
	}
	if err := rlp.DecodeBytes(payload, body); err != nil {
		return err
	}
	r.Originator, r.Receiver, r.Nonce, r.Body = enc.Originator, enc.Receiver, enc.Nonce, body
	return nil
}
