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

package stackscrypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSha512Trunc256ConcatMatchesManualConcat(t *testing.T) {
	a, b := []byte("burn-header"), []byte("block-hash")
	concatenated := append(append([]byte{}, a...), b...)

	require.Equal(t, Sha512Trunc256(concatenated), Sha512Trunc256Concat(a, b))
}

func TestHash256IsZero(t *testing.T) {
	require.True(t, Hash256{}.IsZero())
	require.False(t, Sha512Trunc256([]byte("x")).IsZero())
}

func TestHash256StringIsLowercaseHex(t *testing.T) {
	h := Sha512Trunc256([]byte("x"))
	s := h.String()
	require.Len(t, s, 64)
	for _, r := range s {
		require.True(t, (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f'))
	}
}

func TestHash160Length(t *testing.T) {
	out := Hash160([]byte("a compressed pubkey"))
	require.Len(t, out, 20)
}
