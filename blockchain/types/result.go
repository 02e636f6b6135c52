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

import "github.com/meridian-network/meridian/common"

// TransactionStatus is the terminal status of one applied input.
type TransactionStatus uint

const (
	TxStatusUnknown TransactionStatus = iota
	TxStatusCompleted
	TxStatusFailed
)

func (s TransactionStatus) String() string {
	switch s {
	case TxStatusCompleted:
		return "Completed"
	case TxStatusFailed:
		return "Failed"
	}
	return "Unknown"
}

// TransactionResult reports the outcome of applying one receipt or
// transaction: its status, the log lines it produced, and the nonces of the
// receipts it emitted, in emission order.
type TransactionResult struct {
	Status   TransactionStatus
	Logs     []string
	Receipts []common.Hash
}
