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
)

// CurrentCmd prints the active validator set.
var CurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the validator set active in the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return execCurrent(cmd)
	},
}

func execCurrent(_ *cobra.Command) error {
	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
	defer cancel()

	sess, err := newSession(ctx)
	if err != nil {
		return err
	}

	validators, err := sess.client.SessionValidators(ctx, sess.at)
	if err != nil {
		return err
	}

	tree := gotree.New(fmt.Sprintf("session validators (%d)", len(validators)))
	for _, validator := range validators {
		tree.Appendf("%s", validator.Pretty(sess.network))
	}
	fmt.Fprint(os.Stdout, tree.String())
	return nil
}
