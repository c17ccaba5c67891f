// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChainSafe/offline-election/config"
	"github.com/ChainSafe/offline-election/lib/election"
)

func init() {
	flags := CouncilCmd.Flags()
	flags.Int("count", 0, "number of seats to fill, 0 for desired members plus runners-up")
	flags.Int("iterations", 0, "post-election balancing rounds")
	flags.Bool("reduce", false, "remove redundant support graph edges after balancing")
	flags.Int("max-voters", 0, "truncate the voter set to this size, testing only")
	flags.String("input", "", "path to a snapshot file to run from instead of a node")
	flags.String("snapshot-output", "", "path to write the fetched snapshot to as json")
	flags.String("output", "", "path to write the result to as json")
}

// CouncilCmd predicts the council election.
var CouncilCmd = &cobra.Command{
	Use:   "council",
	Short: "Predict the council election of the elections-phragmen pallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return execCouncil(cmd)
	},
}

func execCouncil(cmd *cobra.Command) error {
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
			members, runnersUp, err := sess.client.DesiredSeats(ctx, sess.at)
			if err != nil {
				return err
			}
			count = int(members + runnersUp)
			logger.Debug("using configured seat counts",
				"members", members, "runners_up", runnersUp)
		}

		maxVoters, err := cmd.Flags().GetInt("max-voters")
		if err != nil {
			return fmt.Errorf("failed to get max-voters: %s", err)
		}
		snapshot, err = election.BuildCouncilSnapshot(ctx, sess.client, sess.at,
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
