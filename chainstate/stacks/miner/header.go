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

// This file implements component A, the header factory: pure functions
// that materialize anchored and microblock headers and compute their
// identifiers, grounded on StacksBlockHeader::from_parent_empty /
// StacksBlockHeader::genesis / StacksMicroblockHeader::first_unsigned /
// StacksMicroblockHeader::from_parent_unsigned in the reference
// implementation.
package miner

import (
	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/merkle"
	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/types"
	"github.com/lp662lp662/stacks-blockchain/params"
	"github.com/lp662lp662/stacks-blockchain/stackscrypto"
)

// anchoredFromParent fills the parent-derived fields of a new anchored
// header; tx_merkle_root and state_index_root stay zeroed until
// MineAnchoredBlock finalizes them.
func anchoredFromParent(
	parentHeader types.AnchoredHeader,
	parentMicroblockTail *types.MicroblockHeader,
	totalWork types.TotalWork,
	proof types.VRFProof,
	microblockPubKeyHash [20]byte,
) types.AnchoredHeader {
	h := types.AnchoredHeader{
		ParentBlockID:        parentHeader.BlockID(),
		TotalWork:            totalWork,
		VRFProof:             proof,
		MicroblockPubKeyHash: microblockPubKeyHash,
	}
	if parentMicroblockTail != nil {
		h.ParentMicroblock = parentMicroblockTail.BlockID()
		h.ParentMicroblockSequence = parentMicroblockTail.Sequence
	} else {
		h.ParentMicroblock = params.EmptyMicroblockParent
	}
	return h
}

// genesisAnchored returns the fixed header for the chain's genesis block:
// all parent fields are the empty sentinel, total work is zero.
func genesisAnchored() types.AnchoredHeader {
	return types.AnchoredHeader{
		ParentBlockID:    params.EmptyMicroblockParent,
		ParentMicroblock: params.EmptyMicroblockParent,
		TotalWork:        types.InitialTotalWork(),
	}
}

// microblockFirstUnsigned starts a microblock stream: sequence 0, chained
// from the anchored block (or, for the synthetic placeholder, from the
// microblock the placeholder represents).
func microblockFirstUnsigned(prevBlockID types.Hash256, txMerkleRoot types.Hash256) types.MicroblockHeader {
	return types.MicroblockHeader{
		Sequence:     0,
		PrevBlockID:  prevBlockID,
		TxMerkleRoot: txMerkleRoot,
	}
}

// microblockFromParentUnsigned continues a stream from prev. Returns
// ErrStreamTooLong if prev.Sequence is already the maximum uint16.
func microblockFromParentUnsigned(prev types.MicroblockHeader, txMerkleRoot types.Hash256) (types.MicroblockHeader, error) {
	if prev.Sequence == 65535 {
		return types.MicroblockHeader{}, ErrStreamTooLong()
	}
	return types.MicroblockHeader{
		Sequence:     prev.Sequence + 1,
		PrevBlockID:  prev.BlockID(),
		TxMerkleRoot: txMerkleRoot,
	}, nil
}

// signMicroblock signs header's pre-image with key, returning a copy of
// header with Signature populated.
func signMicroblock(header types.MicroblockHeader, key *stackscrypto.PrivateKey) (types.MicroblockHeader, error) {
	sig, err := key.Sign(header.PreimageDigest())
	if err != nil {
		return types.MicroblockHeader{}, ErrVm(err, true)
	}
	header.Signature = sig
	return header, nil
}

// verifyMicroblock reports whether header's signature recovers to
// pubKeyHash.
func verifyMicroblock(header types.MicroblockHeader, pubKeyHash [20]byte) bool {
	return stackscrypto.VerifyPubKeyHash(header.Signature, header.PreimageDigest(), pubKeyHash)
}

// merkleRoot is a small local alias kept so call sites in sandbox.go read
// the same way the reference implementation's miner.rs inlines
// MerkleTree::<Sha512Trunc256Sum>::new(...).root().
func merkleRoot(txs []types.Transaction) types.Hash256 {
	leaves := make([]types.Hash256, len(txs))
	for i, tx := range txs {
		leaves[i] = tx.TxID()
	}
	return merkle.Root(leaves)
}
