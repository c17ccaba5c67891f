// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/qdm12/gotree"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChainSafe/offline-election/lib/election"
)

// DanglingNominatorsCmd lists nominators with slash-invalidated votes.
var DanglingNominatorsCmd = &cobra.Command{
	Use:   "dangling-nominators",
	Short: "List nominators with a target slashed since their nomination was submitted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return execDanglingNominators(cmd)
	},
}

func execDanglingNominators(_ *cobra.Command) error {
	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
	defer cancel()

	sess, err := newSession(ctx)
	if err != nil {
		return err
	}

	dangling, err := election.FindDanglingNominators(ctx, sess.client, sess.at)
	if err != nil {
		return err
	}

	tree := gotree.New(fmt.Sprintf("dangling nominators (%d)", len(dangling)))
	for _, nominator := range dangling {
		node := tree.Appendf("%s", nominator.Who.Pretty(sess.network))
		for _, target := range nominator.Targets {
			node.Appendf("slashed target %s", target.Pretty(sess.network))
		}
	}
	fmt.Fprint(os.Stdout, tree.String())
	return nil
}
