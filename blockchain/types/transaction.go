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
	"bytes"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/crypto"
)

// TxType tags the concrete transaction body carried by a SignedTransaction.
type TxType uint8

const (
	TxTypeSendMoney TxType = iota
	TxTypeStake
	TxTypeCreateAccount
	TxTypeDeployContract
	TxTypeSwapKey
	TxTypeFunctionCall
)

func (t TxType) String() string {
	switch t {
	case TxTypeSendMoney:
		return "SendMoney"
	case TxTypeStake:
		return "Stake"
	case TxTypeCreateAccount:
		return "CreateAccount"
	case TxTypeDeployContract:
		return "DeployContract"
	case TxTypeSwapKey:
		return "SwapKey"
	case TxTypeFunctionCall:
		return "FunctionCall"
	}
	return "UndefinedTxType"
}

var errUndefinedTxType = errors.New("undefined tx type")

// TxInternalData is implemented by every transaction body. Dispatch is done
// with an exhaustive type switch over the concrete types, never reflection.
type TxInternalData interface {
	Type() TxType

	// GetOriginator returns the account that signed and pays for the
	// transaction.
	GetOriginator() string

	// GetNonce returns the transaction nonce; it must exceed the current
	// account nonce to apply.
	GetNonce() uint64

	// GetMana returns the mana budget attached by the originator.
	GetMana() uint32

	// GetContractID returns the contract the mana charge is scoped to, or the
	// empty string when the transaction carries no contract scope.
	GetContractID() string

	Equal(t TxInternalData) bool
}

func newTxInternalData(t TxType) (TxInternalData, error) {
	switch t {
	case TxTypeSendMoney:
		return &TxInternalDataSendMoney{}, nil
	case TxTypeStake:
		return &TxInternalDataStake{}, nil
	case TxTypeCreateAccount:
		return &TxInternalDataCreateAccount{}, nil
	case TxTypeDeployContract:
		return &TxInternalDataDeployContract{}, nil
	case TxTypeSwapKey:
		return &TxInternalDataSwapKey{}, nil
	case TxTypeFunctionCall:
		return &TxInternalDataFunctionCall{}, nil
	}
	return nil, errUndefinedTxType
}

// SignedTransaction couples a transaction body with the signature over its
// serialized form. Whether the signature is acceptable is the caller's
// policy; the runtime only carries it.
type SignedTransaction struct {
	Signature crypto.Signature
	Body      TxInternalData

	// cache of the body hash
	hash atomic.Value
}

// NewSignedTransaction wraps a body with its signature.
func NewSignedTransaction(sig crypto.Signature, body TxInternalData) *SignedTransaction {
	return &SignedTransaction{Signature: sig, Body: body}
}

// Hash returns the Keccak256 hash of the serialized transaction body. Receipt
// nonces of the transaction's outputs are derived from it.
func (tx *SignedTransaction) Hash() common.Hash {
	if hash := tx.hash.Load(); hash != nil {
		return hash.(common.Hash)
	}
	var buf bytes.Buffer
	buf.WriteByte(byte(tx.Body.Type()))
	if err := rlp.Encode(&buf, tx.Body); err != nil {
		panic("types: cannot encode tx body: " + err.Error())
	}
	v := crypto.Keccak256Hash(buf.Bytes())
	tx.hash.Store(v)
	return v
}

// EncodeRLP implements rlp.Encoder. The body is serialized as a type byte
// followed by the body payload, the same discipline every tagged union in this
// package uses.
func (tx *SignedTransaction) EncodeRLP(w io.Writer) error {
	body, err := encodeTaggedBody(byte(tx.Body.Type()), tx.Body)
	if err != nil {
		return err
	}
	return rlp.Encode(w, &signedTransactionRLP{tx.Signature[:], body})
}

// DecodeRLP implements rlp.Decoder.
func (tx *SignedTransaction) DecodeRLP(s *rlp.Stream) error {
	var enc signedTransactionRLP
	if err := s.Decode(&enc); err != nil {
		return err
	}
	if len(enc.Signature) != crypto.SignatureLength {
		return errors.New("bad signature length")
	}
	copy(tx.Signature[:], enc.Signature)
	tag, body, err := decodeTaggedBody(enc.Body)
	if err != nil {
		return err
	}
	data, err := newTxInternalData(TxType(tag))
	if err != nil {
		return err
	}
	if err := rlp.DecodeBytes(body, data); err != nil {
		return err
	}
	tx.Body = data
	return nil
}

type signedTransactionRLP struct {
	Signature []byte
	Body      []byte
}

// encodeTaggedBody serializes a union member as tag byte || rlp(payload).
func encodeTaggedBody(tag byte, payload interface{}) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(tag)
	if err := rlp.Encode(&buf, payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeTaggedBody(b []byte) (byte, []byte, error) {
	if len(b) == 0 {
		return 0, nil, errors.New("empty tagged body")
	}
	return b[0], b[1:], nil
}
