// Copyright 2018 The klaytn Authors
// This file is part of the klaytn library.
//
// The klaytn library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The klaytn library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the klaytn library. If not, see <http://www.gnu.org/licenses/>.

// Package vmtest is a hand-rolled, in-memory stand-in for the three
// external collaborators the core pins contracts against but never
// implements itself: the transaction-processing VM and its database, the
// persistent index/trie store, and the burn-chain headers store (spec.md
// §1). It exists purely to exercise chainstate/stacks/miner
// deterministically, the same role the teacher node's own tests/ package
// plays for work/worker.go (tests/klay_test_blockchain_test.go builds a
// full in-memory chain fixture rather than standing up a real backend).
package vmtest

import (
	"encoding/binary"
	"fmt"

	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/types"
	"github.com/lp662lp662/stacks-blockchain/stackscrypto"
)

// TxKind enumerates the handful of transaction shapes the fake VM knows
// how to execute.
type TxKind uint8

const (
	KindCoinbase TxKind = iota
	KindTokenTransfer
	KindContractDeploy
	KindContractCall
)

// Tx is the test harness's concrete types.Transaction implementation.
type Tx struct {
	Kind   TxKind
	Nonce  uint64
	Sender [20]byte
	Mode   types.AnchorMode

	// TokenTransfer fields.
	Recipient [20]byte
	Amount    uint64

	// ContractDeploy / ContractCall fields. ContractCall computes
	// Numerator/Denominator (integer division, the VM's only "contract
	// logic") and stores it into VarName — standing in for a real
	// contract language's execution.
	ContractName string
	VarName      string
	Numerator    int64
	Denominator  int64
}

var _ types.Transaction = (*Tx)(nil)

// Serialize renders a fixed binary encoding sufficient for size-budget
// accounting and for txid hashing; field layout mirrors the binBuf
// convention used by chainstate/stacks/types' headers.
func (t *Tx) Serialize() []byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, byte(t.Kind))
	buf = appendU64(buf, t.Nonce)
	buf = append(buf, t.Sender[:]...)
	buf = append(buf, byte(t.Mode))
	buf = append(buf, t.Recipient[:]...)
	buf = appendU64(buf, t.Amount)
	buf = appendString(buf, t.ContractName)
	buf = appendString(buf, t.VarName)
	buf = appendU64(buf, uint64(t.Numerator))
	buf = appendU64(buf, uint64(t.Denominator))
	return buf
}

// TxID hashes the serialized transaction, the same primitive used for
// block identifiers.
func (t *Tx) TxID() types.Hash256 {
	return stackscrypto.Sha512Trunc256(t.Serialize())
}

// AnchorMode reports where this transaction may be packed.
func (t *Tx) AnchorMode() types.AnchorMode { return t.Mode }

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendString(buf []byte, s string) []byte {
	buf = appendU64(buf, uint64(len(s)))
	return append(buf, s...)
}

// String renders a Tx for test failure messages.
func (t *Tx) String() string {
	return fmt.Sprintf("Tx{kind=%d nonce=%d sender=%x}", t.Kind, t.Nonce, t.Sender)
}
