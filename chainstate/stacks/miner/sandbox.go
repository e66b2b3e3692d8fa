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

// This file implements component C, the epoch sandbox: opening a
// parent-derived execution context under sentinel identifiers, replaying
// the parent tenure's microblock stream, finalizing the anchored block and
// subsequent microblocks, and publishing the resulting trie. Grounded on
// StacksBlockBuilder::epoch_begin / mine_anchored_block /
// mine_next_microblock / epoch_finish in the reference implementation.
package miner

import (
	"context"

	"github.com/pkg/errors"

	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/types"
	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/vmiface"
	"github.com/lp662lp662/stacks-blockchain/params"
	"github.com/lp662lp662/stacks-blockchain/stackscrypto"
)

// EpochBegin resolves matured rewards, replays the parent tenure's
// microblocks under sentinel burn/block identifiers, and returns the
// writable execution context transactions are appended against.
func (b *Builder) EpochBegin(ctx context.Context) (vmiface.ExecutionContext, error) {
	if b.ph != phaseFresh {
		logger.Crit("programmer error: epoch_begin called twice")
	}

	payouts, err := b.rewardRes.ComputeMaturedRewards(ctx, b.parentTip)
	if err != nil {
		return nil, ErrVm(errors.Wrap(err, "compute_matured_rewards"), false)
	}
	b.minerPayouts = &payouts

	parentBurn := b.parentTip.BurnHeaderHash
	parentBlock := b.header.ParentBlockID

	parentMicroblocks, err := b.mbStore.LoadStagingMicroblocks(ctx, parentBurn, parentBlock, 65535)
	if err != nil {
		return nil, ErrVm(errors.Wrap(err, "load_staging_microblocks"), false)
	}

	ec, err := b.vm.OpenBlock(ctx, parentBurn, parentBlock, params.SentinelBurnHeader, params.SentinelBlockHeader)
	if err != nil {
		return nil, ErrVm(errors.Wrap(err, "open_block"), false)
	}

	if len(parentMicroblocks) == 0 {
		b.SetParentMicroblock(params.EmptyMicroblockParent, 0)
	} else {
		_, _, err := b.vm.ProcessMicroblocksTransactions(ctx, ec, parentMicroblocks)
		if err != nil {
			if invalid, ok := err.(*vmiface.InvalidMicroblockError); ok {
				logger.Warn("invalid parent microblock stream", "offender", invalid.OffenderID, "err", invalid.Err)
				return nil, ErrInvalidStacksMicroblock(invalid.OffenderID, invalid.Err)
			}
			return nil, ErrVm(errors.Wrap(err, "process_microblocks_transactions"), false)
		}
		last := parentMicroblocks[len(parentMicroblocks)-1].Header
		b.SetParentMicroblock(last.BlockID(), last.Sequence)
	}

	b.ph = phaseOpen
	logger.Info("epoch begin", "miner", b.minerID, "parent_microblocks", len(parentMicroblocks))
	return ec, nil
}

// MineAnchoredBlock finalizes the anchored block: it grants any matured
// rewards (unconditionally whenever epoch_begin resolved a payout set,
// even an empty one or an empty anchored_txs — spec.md §9 preserves this),
// computes the tx Merkle root, stamps the post-image state root, and
// transitions anchored_done false -> true exactly once.
//
// Calling this when anchored_done is already true is a programmer error.
func (b *Builder) MineAnchoredBlock(ctx context.Context, ec vmiface.ExecutionContext) (types.AnchoredBlock, error) {
	b.requireOpen("mine_anchored_block")
	if b.anchoredDone {
		logger.Crit("programmer error: mine_anchored_block called twice")
	}

	if b.minerPayouts != nil {
		if err := b.vm.ProcessMaturedMinerRewards(ctx, ec, *b.minerPayouts); err != nil {
			return types.AnchoredBlock{}, ErrVm(errors.Wrap(err, "process_matured_miner_rewards"), true)
		}
	}

	b.header.TxMerkleRoot = merkleRoot(b.anchoredTxs)
	b.header.StateIndexRoot = ec.GetRootHash()

	block := types.AnchoredBlock{
		Header:       b.header,
		Transactions: append([]types.Transaction(nil), b.anchoredTxs...),
	}

	b.prevMicroblockHeader = microblockFirstUnsigned(block.BlockHash(), stackscrypto.Hash256{})
	b.anchoredDone = true

	logger.Info("mined anchored block", "miner", b.minerID, "block_id", block.BlockHash(), "txs", len(block.Transactions))
	return block, nil
}

// MineNextMicroblock cuts the next microblock from the currently buffered
// micro_txs, chaining from the anchored block (if this is the first
// microblock of the tenure) or from the previous microblock. The
// sequence counter strictly increases; overflow is ErrStreamTooLong.
func (b *Builder) MineNextMicroblock() (types.Microblock, error) {
	b.requireOpen("mine_next_microblock")
	if !b.anchoredDone {
		logger.Crit("programmer error: mine_next_microblock called before mine_anchored_block")
	}

	txMerkleRoot := merkleRoot(b.microTxs)

	var next types.MicroblockHeader
	if b.prevMicroblockHeader.TxMerkleRoot.IsZero() {
		next = microblockFirstUnsigned(b.prevMicroblockHeader.PrevBlockID, txMerkleRoot)
	} else {
		var err error
		next, err = microblockFromParentUnsigned(b.prevMicroblockHeader, txMerkleRoot)
		if err != nil {
			return types.Microblock{}, err
		}
	}

	signed, err := signMicroblock(next, b.minerPrivKey)
	if err != nil {
		return types.Microblock{}, err
	}
	if !verifyMicroblock(signed, b.header.MicroblockPubKeyHash) {
		logger.Crit("programmer error: microblock failed to verify against our own key")
	}

	b.prevMicroblockHeader = signed

	mb := types.Microblock{
		Header:       signed,
		Transactions: append([]types.Transaction(nil), b.microTxs...),
	}
	b.microTxs = nil

	logger.Info("mined microblock", "miner", b.minerID, "seq", signed.Sequence, "txs", len(mb.Transactions))
	return mb, nil
}

// EpochFinish commits the execution context and atomically republishes
// the trie it produced from its sentinel-addressed path to its
// ".mined"-suffixed path, consuming the builder. Per spec.md §9, the
// rename is atomic but not crash-consistent; FileStore.Reconcile cleans up
// an abandoned sentinel path at the next startup.
func (b *Builder) EpochFinish(ctx context.Context, ec vmiface.ExecutionContext) error {
	b.requireOpen("epoch_finish")

	if err := b.vm.CommitBlock(ctx, ec); err != nil {
		return ErrVm(errors.Wrap(err, "commit_block"), true)
	}

	indexBlockID := types.IndexBlockID(params.SentinelBurnHeader, params.SentinelBlockHeader)
	if err := b.artifacts.Rename(params.SentinelBurnHeader, params.SentinelBlockHeader, indexBlockID); err != nil {
		return ErrVm(errors.Wrap(err, "rename_artifact"), true)
	}

	b.ph = phaseFinished
	logger.Info("epoch finish", "miner", b.minerID, "index_block_id", indexBlockID)
	return nil
}
