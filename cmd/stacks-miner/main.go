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

// This binary is a small operational utility around params.Config, not a
// node: it does not stand up networking, RPC, or a miner loop, all of
// which are out of this module's scope. It exists so the TOML config
// plumbing params.Config carries has an actual CLI surface to be loaded
// through, the way cmd/kcn/main.go's flag set feeds its node config.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/lp662lp662/stacks-blockchain/log"
	"github.com/lp662lp662/stacks-blockchain/params"
)

var logger = log.NewModuleLogger(log.CMD)

var configFlag = cli.StringFlag{
	Name:  "config",
	Usage: "path to a TOML protocol config file (defaults to compiled-in mainnet constants)",
}

func main() {
	app := cli.NewApp()
	app.Name = "stacks-miner"
	app.Usage = "protocol-config inspection for the anchored-block/microblock assembler"
	app.Flags = []cli.Flag{configFlag}
	app.Commands = []cli.Command{
		showConfigCommand,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("stacks-miner exited with error", "err", err)
		os.Exit(1)
	}
}

var showConfigCommand = cli.Command{
	Name:   "show-config",
	Usage:  "load a protocol config and print the effective values",
	Flags:  []cli.Flag{configFlag},
	Action: showConfig,
}

func showConfig(ctx *cli.Context) error {
	cfg := params.MainnetConfig()

	if path := ctx.String(configFlag.Name); path != "" {
		loaded, err := params.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("loading config from %s: %w", path, err)
		}
		cfg = loaded
	}

	fmt.Printf("max_epoch_size = %d\n", cfg.MaxEpochSize)
	fmt.Printf("reward_maturity = %d\n", cfg.RewardMaturity)
	fmt.Printf("reward_window = %d\n", cfg.RewardWindow)
	return nil
}
