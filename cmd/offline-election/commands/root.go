// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package commands wires the election subcommands to the scraper and
// the solver pipeline.
package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/ChainSafe/log15"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChainSafe/offline-election/config"
)

var (
	cfg    = config.DefaultConfig()
	logger = log.New("pkg", "cmd")
)

// RootCmd is the root command of the tool.
var RootCmd = NewRootCommand()

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offline-election",
		Short: "Predict substrate validator and council elections offline",
		Long: `Offline-election scrapes the staking or council state of a substrate
chain at one block and runs the sequential phragmen election over it,
predicting the outcome before the chain computes it.
Usage:
	offline-election staking --uri wss://rpc.polkadot.io
	offline-election council --at 0x1234... --iterations 10 --reduce
	offline-election current
	offline-election dangling-nominators`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// env variables with OFFLINE_ELECTION prefix
			// (eg. OFFLINE_ELECTION_URI)
			viper.SetEnvPrefix("OFFLINE_ELECTION")
			viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
			viper.AutomaticEnv()

			if err := viper.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
				return fmt.Errorf("failed to bind flags: %s", err)
			}
			if err := viper.Unmarshal(cfg); err != nil {
				return fmt.Errorf("failed to unmarshal config: %s", err)
			}
			setupLogging(cfg.Verbosity)
			return nil
		},
	}

	addRootFlags(cmd)
	cmd.AddCommand(
		StakingCmd,
		CouncilCmd,
		CurrentCmd,
		DanglingNominatorsCmd,
	)
	return cmd
}

// addRootFlags adds the persistent flags shared by all subcommands
func addRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("uri",
		config.DefaultURI,
		"Websocket endpoint of the node to scrape")
	flags.String("at",
		"",
		"0x prefixed block hash to pin all storage reads to. Defaults to the chain head")
	flags.String("network",
		"",
		"Address format to use, one of: "+strings.Join(config.KnownNetworks(), ", ")+
			". Resolved from the runtime spec name when empty")
	flags.CountP("verbosity",
		"v",
		"Log verbosity. Repeat for more detail")
	flags.Duration("timeout",
		10*time.Minute,
		"Overall run timeout")
}

// setupLogging installs the root log handler for the run. Logs go to
// stderr so results on stdout stay machine readable.
func setupLogging(verbosity int) {
	handler := log.StreamHandler(os.Stderr, log.TerminalFormat())
	if verbosity >= 2 {
		handler = log.CallerFileHandler(handler)
	}
	log.Root().SetHandler(log.LvlFilterHandler(logLevel(verbosity), handler))
}

// logLevel maps the -v count to a log level: info by default, debug
// for -v, trace for -vv and beyond.
func logLevel(verbosity int) log.Lvl {
	switch {
	case verbosity <= 0:
		return log.LvlInfo
	case verbosity == 1:
		return log.LvlDebug
	default:
		return log.LvlTrace
	}
}
