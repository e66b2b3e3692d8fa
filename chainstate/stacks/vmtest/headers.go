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

	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/vmiface"
)

// HeadersStore is an in-memory vmiface.HeadersReader: a flat height ->
// sortition-winner table a test populates as it advances tenures, standing
// in for the real burn-chain headers database.
type HeadersStore struct {
	mu     sync.Mutex
	miners map[uint64]vmiface.MinerID
}

var _ vmiface.HeadersReader = (*HeadersStore)(nil)

// NewHeadersStore returns an empty store.
func NewHeadersStore() *HeadersStore {
	return &HeadersStore{miners: make(map[uint64]vmiface.MinerID)}
}

// RecordMiner records height's sortition winner, called by a test once a
// tenure's outcome is known.
func (h *HeadersStore) RecordMiner(height uint64, miner vmiface.MinerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.miners[height] = miner
}

func (h *HeadersStore) MinerAtHeight(ctx context.Context, height uint64) (vmiface.MinerID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.miners[height]
	return m, ok
}
