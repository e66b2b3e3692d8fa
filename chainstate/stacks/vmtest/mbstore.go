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

package vmtest

import (
	"context"
	"sync"

	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/types"
	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/vmiface"
)

// MicroblockStore is an in-memory vmiface.MicroblockStore: a test stages a
// parent tenure's microblock stream under its (parentBurn, parentBlock) key
// before constructing the child Builder, standing in for the real staged
// microblock database.
type MicroblockStore struct {
	mu     sync.Mutex
	staged map[types.Hash256][]types.Microblock
}

var _ vmiface.MicroblockStore = (*MicroblockStore)(nil)

// NewMicroblockStore returns an empty store.
func NewMicroblockStore() *MicroblockStore {
	return &MicroblockStore{staged: make(map[types.Hash256][]types.Microblock)}
}

// Stage records mbs as the staged stream for (parentBurn, parentBlock).
func (s *MicroblockStore) Stage(parentBurn, parentBlock types.Hash256, mbs []types.Microblock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged[types.IndexBlockID(parentBurn, parentBlock)] = mbs
}

func (s *MicroblockStore) LoadStagingMicroblocks(ctx context.Context, parentBurn, parentBlock types.Hash256, maxSeq uint16) ([]types.Microblock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.staged[types.IndexBlockID(parentBurn, parentBlock)]
	out := make([]types.Microblock, 0, len(all))
	for _, mb := range all {
		if mb.Header.Sequence > maxSeq {
			break
		}
		out = append(out, mb)
	}
	return out, nil
}
