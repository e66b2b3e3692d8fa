// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package params

import (
	"os"

	"github.com/naoina/toml"
)

// Config holds the process-wide constants the assembler core is built
// against. These used to be module-level consts in the reference
// implementation; threading them through a value instead lets a testnet
// override maturity windows or the epoch size without a rebuild.
type Config struct {
	// MaxEpochSize is the maximum total serialized bytes of an anchored
	// block, header included.
	MaxEpochSize uint64 `toml:"max_epoch_size"`

	// RewardMaturity is the number of blocks a reward must age before it
	// becomes spendable.
	RewardMaturity uint64 `toml:"reward_maturity"`

	// RewardWindow is the number of blocks a miner's reward streams over.
	RewardWindow uint64 `toml:"reward_window"`
}

// EmptyMicroblockParent, SentinelBurnHeader and SentinelBlockHeader are
// fixed 32-byte sentinels. They are not tunable per network, so they stay
// package-level rather than living on Config: every honest implementation
// must agree on the same bytes for these to have any meaning as sentinels.
var (
	EmptyMicroblockParent = [32]byte{0xff}
	SentinelBurnHeader    = [32]byte{0x00, 'm', 'i', 'n', 'e', 'r', '-', 'b', 'u', 'r', 'n'}
	SentinelBlockHeader   = [32]byte{0x00, 'm', 'i', 'n', 'e', 'r', '-', 'b', 'l', 'o', 'c', 'k'}
)

// MainnetConfig mirrors the reference implementation's compiled-in
// constants (2 MiB epoch size, a 100-block maturity period, roughly 17
// hours at 10-minute blocks, and a 1-block reward window).
func MainnetConfig() Config {
	return Config{
		MaxEpochSize:   2 * 1024 * 1024,
		RewardMaturity: 100,
		RewardWindow:   1,
	}
}

// LoadConfig reads a TOML-encoded Config from path, following the same
// naoina/toml decoding convention the node uses for its own config files
// (node/defaults.go, cmd/utils/flags.go).
func LoadConfig(path string) (Config, error) {
	cfg := MainnetConfig()

	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
