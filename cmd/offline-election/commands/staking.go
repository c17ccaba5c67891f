// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChainSafe/offline-election/config"
	"github.com/ChainSafe/offline-election/lib/election"
)

func init() {
	flags := StakingCmd.Flags()
	flags.Int("count", 0, "number of validators to elect, 0 for the chain's validator count")
	flags.Int("iterations", 0, "post-election balancing rounds")
	flags.Bool("reduce", false, "remove redundant support graph edges after balancing")
	flags.Int("max-voters", 0, "truncate the voter set to this size, testing only")
	flags.String("input", "", "path to a snapshot file to run from instead of a node")
	flags.String("snapshot-output", "", "path to write the fetched snapshot to as json")
	flags.String("output", "", "path to write the result to as json")
}

// StakingCmd predicts the validator election.
var StakingCmd = &cobra.Command{
	Use:   "staking",
	Short: "Predict the validator election of the staking pallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return execStaking(cmd)
	},
}

func execStaking(cmd *cobra.Command) error {
	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
	defer cancel()

	count, err := cmd.Flags().GetInt("count")
	if err != nil {
		return fmt.Errorf("failed to get count: %s", err)
	}
	input, err := cmd.Flags().GetString("input")
	if err != nil {
		return fmt.Errorf("failed to get input: %s", err)
	}

	var (
		snapshot *election.Snapshot
		network  config.Network
	)
	if input != "" {
		if count <= 0 {
			return fmt.Errorf("--count must be given when running from --input")
		}
		network, err = offlineNetwork()
		if err != nil {
			return err
		}
		snapshot, err = election.LoadSnapshotFile(input)
		if err != nil {
			return err
		}
	} else {
		sess, err := newSession(ctx)
		if err != nil {
			return err
		}
		network = sess.network

		if count <= 0 {
			chainCount, err := sess.client.ValidatorCount(ctx, sess.at)
			if err != nil {
				return err
			}
			count = int(chainCount)
		}

		maxVoters, err := cmd.Flags().GetInt("max-voters")
		if err != nil {
			return fmt.Errorf("failed to get max-voters: %s", err)
		}
		snapshot, err = election.BuildStakingSnapshot(ctx, sess.client, sess.at,
			election.BuildOptions{MaxVoters: maxVoters})
		if err != nil {
			return err
		}

		if err := exportSnapshot(cmd, snapshot, network); err != nil {
			return err
		}
	}

	return runElection(cmd, snapshot, network, count)
}

// exportSnapshot writes the snapshot to --snapshot-output when given.
func exportSnapshot(cmd *cobra.Command, snapshot *election.Snapshot,
	network config.Network) error {
	path, err := cmd.Flags().GetString("snapshot-output")
	if err != nil {
		return fmt.Errorf("failed to get snapshot-output: %s", err)
	}
	if path == "" {
		return nil
	}

	data, err := election.EncodeSnapshot(snapshot, network)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("%w: snapshot to %s: %s", election.ErrWrite, path, err)
	}
	logger.Info("snapshot written", "path", path)
	return nil
}

// runElection normalizes the snapshot, runs the election and reports
// the result to stdout and to --output when given.
func runElection(cmd *cobra.Command, snapshot *election.Snapshot,
	network config.Network, count int) error {
	iterations, err := cmd.Flags().GetInt("iterations")
	if err != nil {
		return fmt.Errorf("failed to get iterations: %s", err)
	}
	reduce, err := cmd.Flags().GetBool("reduce")
	if err != nil {
		return fmt.Errorf("failed to get reduce: %s", err)
	}

	normalized, clamped := election.NormalizeSnapshot(snapshot, network)
	if clamped > 0 {
		logger.Warn("stake weights clamped, backing totals underestimate reality",
			"count", clamped)
	}

	result, err := election.RunElection(normalized, election.Params{
		Winners:    count,
		Iterations: iterations,
		Reduce:     reduce,
	})
	if err != nil {
		return err
	}

	election.Summarize(os.Stdout, result, network, cfg.Verbosity > 0)

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output: %s", err)
	}
	if output != "" {
		if err := election.WriteResultFile(output, result, network); err != nil {
			return err
		}
		logger.Info("result written", "path", output)
	}
	return nil
}
