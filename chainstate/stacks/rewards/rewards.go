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

// Package rewards implements the reward & maturity rule (spec.md §4.E): it
// decides which prior sortition winner's reward has matured as of a given
// chain tip, and produces the deterministically ordered payout set that
// mine_anchored_block grants.
package rewards

import (
	"bytes"
	"context"
	"sort"

	lru "github.com/hashicorp/golang-lru"

	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/types"
	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/vmiface"
	"github.com/lp662lp662/stacks-blockchain/log"
	"github.com/lp662lp662/stacks-blockchain/params"
)

var logger = log.NewModuleLogger(log.Rewards)

const cacheSize = 256

// Resolver computes matured rewards for a chain tip, caching recent
// results the way the node's state package caches tries (blockchain/state
// keeps a bounded LRU of past tries rather than recomputing).
type Resolver struct {
	headers  vmiface.HeadersReader
	cfg      params.Config
	coinbase uint64
	cache    *lru.Cache
}

// NewResolver builds a reward resolver over headers, using cfg's maturity
// window and a fixed per-tenure coinbase amount.
func NewResolver(headers vmiface.HeadersReader, cfg params.Config, coinbaseAmount uint64) *Resolver {
	cache, err := lru.New(cacheSize)
	if err != nil {
		// lru.New only fails for a non-positive size, which cacheSize
		// never is.
		panic(err)
	}
	return &Resolver{headers: headers, cfg: cfg, coinbase: coinbaseAmount, cache: cache}
}

// ComputeMaturedRewards resolves the payout set for the block built atop
// the parent tip, i.e. at height h = tip.BlockHeight + 1: the reward
// attributable to the sortition winner at height (h - RewardMaturity -
// RewardWindow). Below that threshold, the set is empty.
func (r *Resolver) ComputeMaturedRewards(ctx context.Context, tip types.ChainTip) (vmiface.MaturedRewards, error) {
	if cached, ok := r.cache.Get(tip.AnchoredHeader.BlockID()); ok {
		return cached.(vmiface.MaturedRewards), nil
	}

	height := tip.BlockHeight + 1
	threshold := r.cfg.RewardMaturity + r.cfg.RewardWindow
	if height < threshold {
		empty := vmiface.MaturedRewards{}
		r.cache.Add(tip.AnchoredHeader.BlockID(), empty)
		return empty, nil
	}

	maturedHeight := height - threshold
	miner, ok := r.headers.MinerAtHeight(ctx, maturedHeight)
	if !ok {
		logger.Warn("no sortition winner at matured height", "height", maturedHeight)
		empty := vmiface.MaturedRewards{}
		r.cache.Add(tip.AnchoredHeader.BlockID(), empty)
		return empty, nil
	}

	out := Order([]vmiface.MaturedReward{
		{Recipient: miner, Amount: r.coinbase, Kind: vmiface.RewardKindMiner},
	})
	r.cache.Add(tip.AnchoredHeader.BlockID(), out)
	return out, nil
}

// Order sorts entries miner-before-user, address-sorted within each kind —
// the ordering every honest miner must reproduce identically.
func Order(entries []vmiface.MaturedReward) vmiface.MaturedRewards {
	sorted := make([]vmiface.MaturedReward, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Kind != sorted[j].Kind {
			return sorted[i].Kind < sorted[j].Kind
		}
		return bytes.Compare(sorted[i].Recipient[:], sorted[j].Recipient[:]) < 0
	})
	return vmiface.MaturedRewards{Entries: sorted}
}
