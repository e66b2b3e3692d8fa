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
	"fmt"
	"os"
	"sync"

	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/types"
	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/vmiface"
	"github.com/lp662lp662/stacks-blockchain/params"
	"github.com/lp662lp662/stacks-blockchain/storage/trie"
)

// VM is an in-memory, single-process stand-in for the chain's real
// transaction-processing engine and its backing trie database. It commits
// state under sentinel (burn, block) coordinates the same way the real VM
// must (spec.md §9), and delegates the actual bytes-on-disk side of
// CommitBlock to a real storage/trie.FileStore so that
// chainstate/stacks/miner's rename-based publish step has a real file to
// operate on.
//
// A production VM additionally authenticates its trie against a Merkle
// proof; this fake has no such structure; see DESIGN.md.
type VM struct {
	mu        sync.Mutex
	files     *trie.FileStore
	coinbase  uint64
	committed map[types.Hash256]*state
}

var _ vmiface.VM = (*VM)(nil)

// NewVM seeds genesis state under (genesisBurnHeaderHash, EmptyMicroblockParent)
// — the composite key OpenBlock will be asked to resolve when a Builder is
// constructed via miner.First. coinbaseAmount is credited to a tenure's
// winning miner by ProcessTransaction on a KindCoinbase tx.
func NewVM(files *trie.FileStore, genesisBurnHeaderHash types.Hash256, coinbaseAmount uint64) *VM {
	vm := &VM{
		files:     files,
		coinbase:  coinbaseAmount,
		committed: make(map[types.Hash256]*state),
	}
	genesisKey := types.IndexBlockID(genesisBurnHeaderHash, params.EmptyMicroblockParent)
	vm.committed[genesisKey] = newState()
	return vm
}

func (vm *VM) OpenBlock(ctx context.Context, parentBurn, parentBlock, newBurn, newBlock types.Hash256) (vmiface.ExecutionContext, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	parentKey := types.IndexBlockID(parentBurn, parentBlock)
	parent, ok := vm.committed[parentKey]
	if !ok {
		return nil, fmt.Errorf("vmtest: no committed state for parent (burn=%s block=%s)", parentBurn, parentBlock)
	}
	return &execContext{newBurn: newBurn, newBlock: newBlock, working: parent.clone()}, nil
}

func (vm *VM) ProcessTransaction(ctx context.Context, ec vmiface.ExecutionContext, txn types.Transaction) error {
	tx, ok := txn.(*Tx)
	if !ok {
		return fmt.Errorf("vmtest: unrecognized transaction type %T", txn)
	}
	e := ec.(*execContext)

	switch tx.Kind {
	case KindCoinbase:
		e.working.balances[tx.Sender] += vm.coinbase

	case KindTokenTransfer:
		if e.working.balances[tx.Sender] < tx.Amount {
			return fmt.Errorf("vmtest: %x has insufficient balance for transfer of %d", tx.Sender, tx.Amount)
		}
		e.working.balances[tx.Sender] -= tx.Amount
		e.working.balances[tx.Recipient] += tx.Amount

	case KindContractDeploy:
		if _, exists := e.working.contracts[tx.ContractName]; exists {
			return fmt.Errorf("vmtest: contract %q already deployed", tx.ContractName)
		}
		e.working.contracts[tx.ContractName] = &contract{vars: make(map[string]int64)}

	case KindContractCall:
		c, exists := e.working.contracts[tx.ContractName]
		if !exists {
			return fmt.Errorf("vmtest: contract %q not deployed", tx.ContractName)
		}
		if tx.Denominator == 0 {
			return fmt.Errorf("vmtest: contract call divides by zero")
		}
		c.vars[tx.VarName] = tx.Numerator / tx.Denominator

	default:
		return fmt.Errorf("vmtest: unrecognized tx kind %d", tx.Kind)
	}
	return nil
}

func (vm *VM) ProcessMicroblocksTransactions(ctx context.Context, ec vmiface.ExecutionContext, microblocks []types.Microblock) (uint64, uint64, error) {
	var spent, burnt uint64
	for _, mb := range microblocks {
		for _, tx := range mb.Transactions {
			if err := vm.ProcessTransaction(ctx, ec, tx); err != nil {
				return spent, burnt, &vmiface.InvalidMicroblockError{OffenderID: mb.Header.BlockID(), Err: err}
			}
			if t, ok := tx.(*Tx); ok && t.Kind == KindTokenTransfer {
				spent += t.Amount
			}
		}
	}
	return spent, burnt, nil
}

func (vm *VM) ProcessMaturedMinerRewards(ctx context.Context, ec vmiface.ExecutionContext, rewards vmiface.MaturedRewards) error {
	e := ec.(*execContext)
	for _, r := range rewards.Entries {
		e.working.balances[r.Recipient] += r.Amount
	}
	return nil
}

func (vm *VM) CommitBlock(ctx context.Context, ec vmiface.ExecutionContext) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	e := ec.(*execContext)
	key := types.IndexBlockID(e.newBurn, e.newBlock)
	vm.committed[key] = e.working

	path := vm.files.BlockPath(e.newBurn, e.newBlock)
	if err := os.WriteFile(path, e.working.bytes(), 0o644); err != nil {
		return fmt.Errorf("vmtest: writing trie file %s: %w", path, err)
	}
	return nil
}

func (vm *VM) BlockPath(burn, block types.Hash256) string {
	return vm.files.BlockPath(burn, block)
}

// PromoteSentinelToRealBlock simulates the out-of-scope validator subsystem
// (spec.md §1's "burn-chain database and sortition logic" collaborator):
// once a tenure's real (burn, block) identity is known — something only
// the burn chain can confirm, long after epoch_finish — committed state
// filed under the sentinel key becomes reachable under its true key so the
// next tenure's OpenBlock can find it.
func (vm *VM) PromoteSentinelToRealBlock(realBurn, realBlockID types.Hash256) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	sentinelKey := types.IndexBlockID(params.SentinelBurnHeader, params.SentinelBlockHeader)
	st, ok := vm.committed[sentinelKey]
	if !ok {
		return
	}
	vm.committed[types.IndexBlockID(realBurn, realBlockID)] = st
}

// AccountBalance is a test-only accessor into committed state, keyed by the
// composite index_block_id.
func (vm *VM) AccountBalance(indexBlockID types.Hash256, addr [20]byte) uint64 {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	st, ok := vm.committed[indexBlockID]
	if !ok {
		return 0
	}
	return st.balances[addr]
}

// ContractVar is a test-only accessor for a contract's stored variable.
func (vm *VM) ContractVar(indexBlockID types.Hash256, contractName, varName string) (int64, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	st, ok := vm.committed[indexBlockID]
	if !ok {
		return 0, false
	}
	c, ok := st.contracts[contractName]
	if !ok {
		return 0, false
	}
	v, ok := c.vars[varName]
	return v, ok
}
