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

// Package trie implements component F, the artifact store interface:
// a stable per-block path function and an atomic single-file rename that
// republishes a finished state trie under its true index_block_id once
// mining finishes.
package trie

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/types"
	"github.com/lp662lp662/stacks-blockchain/log"
)

var logger = log.NewModuleLogger(log.ArtifactDB)

// FileStore roots every block's trie file under one chainstate directory,
// following the (dbType, subdir) path-derivation convention of
// storage/database/db_manager.go in the teacher node, specialized to one
// flat file per burn/block hash pair directly under the root.
type FileStore struct {
	root string
}

// NewFileStore returns a store rooted at dir, creating it if absent.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("trie: creating chainstate root %s: %w", dir, err)
	}
	return &FileStore{root: dir}, nil
}

// BlockPath returns the stable path a trie is written to while a block
// keyed by (burn, block) is in flight.
func (s *FileStore) BlockPath(burn, block types.Hash256) string {
	return filepath.Join(s.root, fmt.Sprintf("%s-%s.trie", burn, block))
}

// minedPath is the path a trie is republished under once
// epoch_finish knows the block's true index_block_id.
func (s *FileStore) minedPath(indexBlockID types.Hash256) string {
	return filepath.Join(s.root, fmt.Sprintf("%s.mined", indexBlockID))
}

// Rename atomically (on POSIX) republishes the sentinel-addressed trie
// file under its true index_block_id. Per spec.md §9, this rename is
// atomic but not crash-consistent against partial trie writes: an
// interrupted miner can leave the sentinel path occupied, which Reconcile
// cleans up at the next startup.
func (s *FileStore) Rename(sentinelBurn, sentinelBlock, indexBlockID types.Hash256) error {
	src := s.BlockPath(sentinelBurn, sentinelBlock)
	dst := s.minedPath(indexBlockID)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("trie: renaming %s to %s: %w", src, dst, err)
	}
	logger.Info("published mined trie", "path", dst)
	return nil
}

// MinedPathExists reports whether the given index_block_id's trie has
// already been published, for validators deciding whether a block's state
// is available.
func (s *FileStore) MinedPathExists(indexBlockID types.Hash256) bool {
	_, err := os.Stat(s.minedPath(indexBlockID))
	return err == nil
}

// Reconcile implements spec.md §9's startup requirement: garbage-collect
// any trie file still sitting at a sentinel path, left behind by a miner
// that was abandoned (dropped without epoch_finish) or crashed mid-rename.
func (s *FileStore) Reconcile(sentinelBurn, sentinelBlock types.Hash256) error {
	path := s.BlockPath(sentinelBurn, sentinelBlock)
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("trie: reconciling abandoned sentinel trie %s: %w", path, err)
	}
	if err == nil {
		logger.Warn("removed abandoned sentinel-path trie at startup", "path", path)
	}
	return nil
}
