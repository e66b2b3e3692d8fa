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

// Package merkle builds the transaction Merkle root used by anchored
// headers and microblock headers: SHA-512/256 leaves, duplicate-last-node
// internal nodes, matching MerkleTree<Sha512Trunc256Sum> in the reference
// implementation.
package merkle

import "github.com/lp662lp662/stacks-blockchain/stackscrypto"

// EmptyRoot is the well-defined root of an empty leaf set.
var EmptyRoot = stackscrypto.Sha512Trunc256(nil)

// Root computes the Merkle root over leaves in order. An empty slice
// yields EmptyRoot. A single leaf's root is its own hash. Odd levels
// duplicate the last node rather than promoting it unchanged, matching the
// chain's canonical tree construction.
func Root(leaves []stackscrypto.Hash256) stackscrypto.Hash256 {
	if len(leaves) == 0 {
		return EmptyRoot
	}
	level := make([]stackscrypto.Hash256, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		next := make([]stackscrypto.Hash256, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, hashPair(level[i], level[i+1]))
			} else {
				next = append(next, hashPair(level[i], level[i]))
			}
		}
		level = next
	}
	return level[0]
}

func hashPair(left, right stackscrypto.Hash256) stackscrypto.Hash256 {
	return stackscrypto.Sha512Trunc256Concat(left[:], right[:])
}
