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

package trie

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/types"
)

func TestRenamePublishesUnderIndexBlockID(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	sentinelBurn, sentinelBlock := types.Hash256{0x01}, types.Hash256{0x02}
	indexBlockID := types.Hash256{0x03}

	require.NoError(t, os.WriteFile(store.BlockPath(sentinelBurn, sentinelBlock), []byte("trie bytes"), 0o644))

	require.NoError(t, store.Rename(sentinelBurn, sentinelBlock, indexBlockID))
	require.True(t, store.MinedPathExists(indexBlockID))

	_, err = os.Stat(store.BlockPath(sentinelBurn, sentinelBlock))
	require.True(t, os.IsNotExist(err), "sentinel path must no longer exist after rename")
}

func TestRenameFailsWithoutSourceFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	err = store.Rename(types.Hash256{0x01}, types.Hash256{0x02}, types.Hash256{0x03})
	require.Error(t, err)
}

func TestReconcileRemovesAbandonedSentinelFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	sentinelBurn, sentinelBlock := types.Hash256{0x01}, types.Hash256{0x02}
	path := store.BlockPath(sentinelBurn, sentinelBlock)
	require.NoError(t, os.WriteFile(path, []byte("abandoned"), 0o644))

	require.NoError(t, store.Reconcile(sentinelBurn, sentinelBlock))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestReconcileIsANoOpWhenNothingToClean(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Reconcile(types.Hash256{0x01}, types.Hash256{0x02}))
}

func TestBlockPathIsStablePerKey(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	burn, block := types.Hash256{0x01}, types.Hash256{0x02}
	require.Equal(t, store.BlockPath(burn, block), store.BlockPath(burn, block))
	require.Equal(t, filepath.Join(dir, burn.String()+"-"+block.String()+".trie"), store.BlockPath(burn, block))
}
