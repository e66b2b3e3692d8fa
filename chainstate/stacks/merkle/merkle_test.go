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

package merkle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lp662lp662/stacks-blockchain/stackscrypto"
)

func leaf(b byte) stackscrypto.Hash256 {
	return stackscrypto.Sha512Trunc256([]byte{b})
}

func TestRootEmpty(t *testing.T) {
	require.Equal(t, EmptyRoot, Root(nil))
}

func TestRootSingleLeaf(t *testing.T) {
	l := leaf(1)
	require.Equal(t, l, Root([]stackscrypto.Hash256{l}))
}

func TestRootDuplicatesLastNodeOnOddLevels(t *testing.T) {
	a, b, c := leaf(1), leaf(2), leaf(3)

	got := Root([]stackscrypto.Hash256{a, b, c})
	want := hashPair(hashPair(a, b), hashPair(c, c))
	require.Equal(t, want, got)
}

func TestRootIsOrderSensitive(t *testing.T) {
	a, b := leaf(1), leaf(2)
	require.NotEqual(t, Root([]stackscrypto.Hash256{a, b}), Root([]stackscrypto.Hash256{b, a}))
}

func TestRootDeterministic(t *testing.T) {
	leaves := []stackscrypto.Hash256{leaf(1), leaf(2), leaf(3), leaf(4), leaf(5)}
	require.Equal(t, Root(leaves), Root(leaves))
}
