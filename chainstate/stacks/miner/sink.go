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

// This file implements component B, the transaction sink: size-budget
// enforcement, anchor-mode routing, and ordered append into whichever
// partition (anchored block or microblock stream) is currently open.
// Grounded on StacksBlockBuilder::try_mine_tx in the reference
// implementation.
package miner

import (
	"context"

	"github.com/rcrowley/go-metrics"

	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/types"
	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/vmiface"
)

// Rejection counters, mirroring the timeLimitReachedCounter/tooLongTxCounter
// pattern work/worker.go registers for its own candidate-rejection paths.
var (
	blockTooBigCounter       = metrics.NewRegisteredCounter("miner/blocktoobig", nil)
	invalidAnchorModeCounter = metrics.NewRegisteredCounter("miner/invalidanchormode", nil)
)

// TryMineTx attempts to append tx to the currently open partition. The
// builder must not yet be closed; ec is the open ExecutionContext
// returned by EpochBegin.
//
// On BlockTooBig or InvalidAnchorMode, bytes_so_far is left unchanged and
// tx is not appended — the builder remains usable for a different
// candidate. A VM failure is returned as a recoverable ErrVm whose Cause is
// the VM's error, and is likewise non-appending; the sink does not attempt
// partial commits (spec.md §4.B).
func (b *Builder) TryMineTx(ctx context.Context, ec vmiface.ExecutionContext, tx types.Transaction) error {
	b.requireOpen("try_mine_tx")

	txLen := uint64(len(tx.Serialize()))
	if b.bytesSoFar+txLen >= b.cfg.MaxEpochSize {
		blockTooBigCounter.Inc(1)
		return ErrBlockTooBig()
	}

	mode := tx.AnchorMode()
	if !b.anchoredDone {
		if !mode.AllowedInAnchoredBlock() {
			invalidAnchorModeCounter.Inc(1)
			return ErrInvalidAnchorMode(mode, b.anchoredDone)
		}
	} else {
		if !mode.AllowedInMicroblock() {
			invalidAnchorModeCounter.Inc(1)
			return ErrInvalidAnchorMode(mode, b.anchoredDone)
		}
	}

	if err := b.vm.ProcessTransaction(ctx, ec, tx); err != nil {
		return ErrVm(err, false)
	}

	if !b.anchoredDone {
		b.anchoredTxs = append(b.anchoredTxs, tx)
	} else {
		b.microTxs = append(b.microTxs, tx)
	}
	b.bytesSoFar += txLen
	return nil
}
