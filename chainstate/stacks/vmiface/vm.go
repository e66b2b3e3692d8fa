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

// Package vmiface pins the contract the assembler core consumes from the
// transaction-processing VM, the persistent index/trie store, and the
// burn-chain headers store. None of these are implemented here: they are
// external collaborators per the spec (see chainstate/stacks/vmtest for the
// in-memory fakes used to exercise the core in tests).
package vmiface

import (
	"context"

	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/types"
)

// ExecutionContext is a transactional handle into the VM/state store,
// scoped to one tenure: writes are buffered until Commit, and the context
// is abandoned (never committed) if the tenure is dropped.
type ExecutionContext interface {
	// GetRootHash returns the post-image root of the in-flight trie as of
	// this point in execution.
	GetRootHash() types.Hash256
}

// VmError is returned verbatim by ProcessTransaction/ProcessMaturedMinerRewards
// on failure; the core does not interpret its contents beyond fatality.
type VmError struct {
	Err   error
	Fatal bool
}

func (e *VmError) Error() string { return e.Err.Error() }
func (e *VmError) Unwrap() error { return e.Err }

// InvalidMicroblockError is raised by ProcessMicroblocksTransactions when
// replay fails partway through a stream; OffenderID names the first
// microblock that could not be applied.
type InvalidMicroblockError struct {
	OffenderID types.Hash256
	Err        error
}

func (e *InvalidMicroblockError) Error() string { return e.Err.Error() }
func (e *InvalidMicroblockError) Unwrap() error { return e.Err }

// VM is the contract consumed by the core (spec.md §6). An implementation
// owns the chain's actual execution engine and its backing database.
type VM interface {
	// OpenBlock opens a writable execution context keyed by
	// (parentBurn, parentBlock), recording its results under
	// (newBurn, newBlock) at commit time.
	OpenBlock(ctx context.Context, parentBurn, parentBlock, newBurn, newBlock types.Hash256) (ExecutionContext, error)

	// ProcessTransaction applies tx against ec. On failure the VM must
	// have rolled back tx's side effects; the caller does not attempt
	// partial commits.
	ProcessTransaction(ctx context.Context, ec ExecutionContext, tx types.Transaction) error

	// ProcessMicroblocksTransactions replays a parent tenure's microblock
	// stream in order. On success it returns STX spent/burnt (opaque to
	// the core beyond being totals); on failure it identifies the
	// offending microblock.
	ProcessMicroblocksTransactions(ctx context.Context, ec ExecutionContext, microblocks []types.Microblock) (stxSpent, stxBurnt uint64, err error)

	// ProcessMaturedMinerRewards grants a computed MaturedRewards set.
	// Any error here is fatal to the tenure per spec.md §7.
	ProcessMaturedMinerRewards(ctx context.Context, ec ExecutionContext, rewards MaturedRewards) error

	// CommitBlock flushes a writable execution context to its on-disk
	// location (BlockPath(newBurn, newBlock), as passed to OpenBlock).
	CommitBlock(ctx context.Context, ec ExecutionContext) error

	// BlockPath returns the stable on-disk path for a block's trie,
	// keyed by (burn, block).
	BlockPath(burn, block types.Hash256) string
}

// HeadersReader is the narrow read-only handle into the headers store used
// to resolve matured rewards (spec.md §4.C step 1 and §4.E).
type HeadersReader interface {
	// MinerAtHeight returns the address that won sortition at the given
	// block height, if any.
	MinerAtHeight(ctx context.Context, height uint64) (minerID MinerID, ok bool)
}

// MinerID identifies a miner/recipient address. Its internal shape belongs
// to the burn-chain/account subsystem; the core only needs it as an
// orderable, comparable key.
type MinerID [20]byte

// RewardKind distinguishes a miner's own reward entry from a user
// co-stake's entry.
type RewardKind uint8

const (
	RewardKindMiner RewardKind = iota
	RewardKindUser
)

// MaturedReward is one payout entry in a MaturedRewards set.
type MaturedReward struct {
	Recipient MinerID
	Amount    uint64
	Kind      RewardKind
}

// MaturedRewards is the ordered payout set produced by the reward-maturity
// rule and consumed by ProcessMaturedMinerRewards.
type MaturedRewards struct {
	Entries []MaturedReward
}

// Empty reports whether there is nothing to grant (below the maturity
// threshold).
func (m MaturedRewards) Empty() bool { return len(m.Entries) == 0 }

// MicroblockStore loads the staged microblock stream left by the parent
// tenure; absence of a stream yields an empty slice, not an error.
type MicroblockStore interface {
	LoadStagingMicroblocks(ctx context.Context, parentBurn, parentBlock types.Hash256, maxSeq uint16) ([]types.Microblock, error)
}
