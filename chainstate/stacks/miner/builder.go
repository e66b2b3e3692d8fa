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

// Package miner is the block builder: it orchestrates the header factory
// (component A), the transaction sink (component B), and the epoch
// sandbox (component C) into the state machine one tenure drives from
// from_parent/first through epoch_finish. It is grounded line-for-line on
// StacksBlockBuilder in the reference implementation's
// chainstate/stacks/miner.rs, restructured in the teacher node's
// Task/worker method style (work/worker.go).
package miner

import (
	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/rewards"
	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/types"
	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/vmiface"
	"github.com/lp662lp662/stacks-blockchain/log"
	"github.com/lp662lp662/stacks-blockchain/params"
	"github.com/lp662lp662/stacks-blockchain/stackscrypto"
	"github.com/lp662lp662/stacks-blockchain/storage/trie"
)

var logger = log.NewModuleLogger(log.Miner)

// phase tracks the state-machine column from spec.md §4.D's table:
// Fresh -> Open(anchored_done=false) -> Open(anchored_done=true) -> Finished.
type phase int

const (
	phaseFresh phase = iota
	phaseOpen
	phaseFinished
)

// Builder is the in-progress state machine for one tenure. It is
// single-writer: never share one across goroutines, matching spec.md §5's
// "owned by exactly one tenure" scheduling model. There is deliberately no
// internal mutex; ownership discipline is the caller's.
type Builder struct {
	cfg       params.Config
	vm        vmiface.VM
	mbStore   vmiface.MicroblockStore
	rewardRes *rewards.Resolver
	artifacts *trie.FileStore

	minerID   int
	parentTip types.ChainTip

	header               types.AnchoredHeader
	anchoredTxs          []types.Transaction
	microTxs             []types.Transaction
	bytesSoFar           uint64
	anchoredDone         bool
	prevMicroblockHeader types.MicroblockHeader
	minerPrivKey         *stackscrypto.PrivateKey
	minerPayouts         *vmiface.MaturedRewards

	ph phase
}

// Deps bundles the external collaborators a Builder is constructed with:
// the VM, the staged-microblock store, the headers-derived reward
// resolver, and the artifact store. The VM and the microblock store are
// out-of-scope external collaborators per spec.md §1, held only through
// their vmiface contracts; the resolver and the artifact store are this
// module's own rewards and storage/trie packages.
type Deps struct {
	Config          params.Config
	VM              vmiface.VM
	MicroblockStore vmiface.MicroblockStore
	Rewards         *rewards.Resolver
	Artifacts       *trie.FileStore
}

// FromParent constructs a builder atop a real parent chain tip, deriving
// the microblock public-key hash from the private key's compressed form
// and initializing bytes_so_far to the serialized header length.
func FromParent(deps Deps, minerID int, parentTip types.ChainTip, totalWork types.TotalWork, proof types.VRFProof, microblockPrivKey *stackscrypto.PrivateKey) *Builder {
	pubKeyHash := stackscrypto.Hash160(microblockPrivKey.CompressedPubKey())
	header := anchoredFromParent(parentTip.AnchoredHeader, parentTip.MicroblockTail, totalWork, proof, pubKeyHash)

	b := &Builder{
		cfg:       deps.Config,
		vm:        deps.VM,
		mbStore:   deps.MicroblockStore,
		rewardRes: deps.Rewards,
		artifacts: deps.Artifacts,

		minerID:   minerID,
		parentTip: parentTip,
		header:    header,
		prevMicroblockHeader: microblockFirstUnsigned(
			params.EmptyMicroblockParent,
			stackscrypto.Hash256{},
		),
		minerPrivKey: microblockPrivKey,
		ph:           phaseFresh,
	}
	b.bytesSoFar = uint64(len(header.Serialize()))
	return b
}

// First constructs a builder atop the chain's synthetic genesis parent.
func First(deps Deps, minerID int, genesisBurnHeaderHash types.Hash256, proof types.VRFProof, microblockPrivKey *stackscrypto.PrivateKey) *Builder {
	genesisTip := types.ChainTip{
		AnchoredHeader: genesisAnchored(),
		BlockHeight:    0,
		BurnHeaderHash: genesisBurnHeaderHash,
	}
	b := FromParent(deps, minerID, genesisTip, types.InitialTotalWork(), proof, microblockPrivKey)
	b.header.ParentBlockID = params.EmptyMicroblockParent
	return b
}

// SetParentMicroblock overrides the anchored header's declared parent
// microblock. Exposed (as in the reference implementation) to let tests
// construct orphaning scenarios; EpochBegin calls this itself during
// normal operation.
func (b *Builder) SetParentMicroblock(hash types.Hash256, seq uint16) {
	b.header.ParentMicroblock = hash
	b.header.ParentMicroblockSequence = seq
}

// Stats is a read-only snapshot for structured logging and metrics,
// mirroring worker.pending()'s read-only accessor pattern in the teacher
// node.
type Stats struct {
	BytesSoFar      uint64
	AnchoredTxCount int
	MicroTxCount    int
	AnchoredDone    bool
}

// Stats returns the builder's current counters.
func (b *Builder) Stats() Stats {
	return Stats{
		BytesSoFar:      b.bytesSoFar,
		AnchoredTxCount: len(b.anchoredTxs),
		MicroTxCount:    len(b.microTxs),
		AnchoredDone:    b.anchoredDone,
	}
}

func (b *Builder) requireOpen(op string) {
	if b.ph == phaseFresh {
		logger.Crit("programmer error: called before epoch_begin", "op", op)
	}
	if b.ph == phaseFinished {
		logger.Crit("programmer error: called after epoch_finish", "op", op)
	}
}
