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
	"fmt"
	"sort"

	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/types"
	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/vmiface"
	"github.com/lp662lp662/stacks-blockchain/stackscrypto"
)

// contract is the fake VM's entire notion of a smart contract: a named bag
// of integer cells.
type contract struct {
	vars map[string]int64
}

func (c *contract) clone() *contract {
	cp := &contract{vars: make(map[string]int64, len(c.vars))}
	for k, v := range c.vars {
		cp.vars[k] = v
	}
	return cp
}

// state is the fake VM's entire account/contract database for one chain
// tip. It is never mutated in place once committed: OpenBlock always works
// against a clone.
type state struct {
	balances  map[[20]byte]uint64
	contracts map[string]*contract
}

func newState() *state {
	return &state{
		balances:  make(map[[20]byte]uint64),
		contracts: make(map[string]*contract),
	}
}

func (s *state) clone() *state {
	cp := newState()
	for k, v := range s.balances {
		cp.balances[k] = v
	}
	for name, c := range s.contracts {
		cp.contracts[name] = c.clone()
	}
	return cp
}

// rootHash derives a deterministic digest over the state, sorted so that
// iteration order never leaks into the hash. This is the fake VM's entire
// "trie": a flat serialization, not an authenticated data structure — see
// DESIGN.md for why that's acceptable in a test double.
func (s *state) rootHash() types.Hash256 {
	addrs := make([][20]byte, 0, len(s.balances))
	for a := range s.balances {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return fmt.Sprintf("%x", addrs[i]) < fmt.Sprintf("%x", addrs[j])
	})

	names := make([]string, 0, len(s.contracts))
	for n := range s.contracts {
		names = append(names, n)
	}
	sort.Strings(names)

	buf := make([]byte, 0, 256)
	for _, a := range addrs {
		buf = append(buf, a[:]...)
		buf = appendU64(buf, s.balances[a])
	}
	for _, n := range names {
		buf = appendString(buf, n)
		c := s.contracts[n]
		varNames := make([]string, 0, len(c.vars))
		for vn := range c.vars {
			varNames = append(varNames, vn)
		}
		sort.Strings(varNames)
		for _, vn := range varNames {
			buf = appendString(buf, vn)
			buf = appendU64(buf, uint64(c.vars[vn]))
		}
	}
	return stackscrypto.Sha512Trunc256(buf)
}

// bytes serializes the state for persistence under FileStore's block path;
// the fake VM's stand-in for an actual trie file.
func (s *state) bytes() []byte {
	buf := make([]byte, 0, 256)
	addrs := make([][20]byte, 0, len(s.balances))
	for a := range s.balances {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return fmt.Sprintf("%x", addrs[i]) < fmt.Sprintf("%x", addrs[j])
	})
	for _, a := range addrs {
		buf = append(buf, a[:]...)
		buf = appendU64(buf, s.balances[a])
	}
	return buf
}

// execContext is the fake VM's vmiface.ExecutionContext: a working clone of
// the parent state plus the (newBurn, newBlock) key it will be filed under
// on commit.
type execContext struct {
	newBurn, newBlock types.Hash256
	working           *state
}

var _ vmiface.ExecutionContext = (*execContext)(nil)

func (ec *execContext) GetRootHash() types.Hash256 { return ec.working.rootHash() }
