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
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/meridian-network/meridian/blockchain/state"
	"github.com/meridian-network/meridian/blockchain/types"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/crypto"
)

// Reserved column prefixes of the state key space.
const (
	colAccount byte = iota
	colCallback
	colCode
	colTxStake
	colTxStakeSeparator
)

// storageSeparator splits an account id from a contract storage key. It is
// outside the valid account-id alphabet, so scoped keys cannot alias account
// records.
const storageSeparator = ','

// System method names are reserved; the account-id alphabet excludes ':', so
// user contracts can never shadow them.
var (
	SystemMethodCreateAccount = []byte("_sys:create_account")
	SystemMethodDeploy        = []byte("_sys:deploy")
)

func accountIDToKey(col byte, accountID string) []byte {
	key := make([]byte, 0, 1+len(accountID))
	key = append(key, col)
	key = append(key, accountID...)
	return key
}

func callbackIDToKey(id []byte) []byte {
	key := make([]byte, 0, 1+len(id))
	key = append(key, colCallback)
	key = append(key, id...)
	return key
}

func txStakeKey(originator, contractID string) []byte {
	key := make([]byte, 0, 2+len(originator)+len(contractID))
	key = append(key, colTxStake)
	key = append(key, originator...)
	key = append(key, colTxStakeSeparator)
	key = append(key, contractID...)
	return key
}

func contractStorageKey(accountID string, key []byte) []byte {
	out := make([]byte, 0, 2+len(accountID)+len(key))
	out = append(out, colAccount)
	out = append(out, accountID...)
	out = append(out, storageSeparator)
	out = append(out, key...)
	return out
}

// createNonceWithNonce derives the identity of the salt-th output of the
// entity identified by base.
func createNonceWithNonce(base common.Hash, salt uint64) common.Hash {
	return crypto.Keccak256Hash(base.Bytes(), common.IndexToBytes(salt))
}

// getStored decodes the value stored under key into out. An unreadable value
// is treated as absent.
func getStored(su *state.StateDBUpdate, key []byte, out interface{}) bool {
	raw, ok := su.Get(key)
	if !ok {
		return false
	}
	if err := rlp.DecodeBytes(raw, out); err != nil {
		logger.WithError(err).Debug("Dropping undecodable state value")
		return false
	}
	return true
}

// setStored encodes value and stages it under key.
func setStored(su *state.StateDBUpdate, key []byte, value interface{}) {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		logger.WithError(err).Debug("set value failed")
		return
	}
	su.Set(key, raw)
}

func getAccount(su *state.StateDBUpdate, accountID string) (*types.Account, bool) {
	account := new(types.Account)
	if !getStored(su, accountIDToKey(colAccount, accountID), account) {
		return nil, false
	}
	return account, true
}

func setAccount(su *state.StateDBUpdate, accountID string, account *types.Account) {
	setStored(su, accountIDToKey(colAccount, accountID), account)
}

func getCallback(su *state.StateDBUpdate, id []byte) (*types.Callback, bool) {
	callback := new(types.Callback)
	if !getStored(su, callbackIDToKey(id), callback) {
		return nil, false
	}
	return callback, true
}

func setCallback(su *state.StateDBUpdate, id []byte, callback *types.Callback) {
	setStored(su, callbackIDToKey(id), callback)
}

func getTxStake(su *state.StateDBUpdate, originator, contractID string) (*TxTotalStake, bool) {
	stake := new(TxTotalStake)
	if !getStored(su, txStakeKey(originator, contractID), stake) {
		return nil, false
	}
	return stake, true
}

func setTxStake(su *state.StateDBUpdate, originator, contractID string, stake *TxTotalStake) {
	setStored(su, txStakeKey(originator, contractID), stake)
}

func getCodeBytes(su *state.StateDBUpdate, accountID string) ([]byte, bool) {
	var code []byte
	if !getStored(su, accountIDToKey(colCode, accountID), &code) {
		return nil, false
	}
	return code, true
}

func setCodeBytes(su *state.StateDBUpdate, accountID string, code []byte) {
	setStored(su, accountIDToKey(colCode, accountID), code)
}

// deployArgs is the payload of a system deploy call.
type deployArgs struct {
	PublicKey []byte
	Code      []byte
}

func encodeDeployArgs(publicKey, code []byte) ([]byte, error) {
	return rlp.EncodeToBytes(&deployArgs{PublicKey: publicKey, Code: code})
}

func decodeDeployArgs(b []byte) (*deployArgs, error) {
	args := new(deployArgs)
	if err := rlp.DecodeBytes(b, args); err != nil {
		return nil, err
	}
	return args, nil
}
