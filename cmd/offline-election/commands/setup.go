// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"context"
	"fmt"

	"github.com/ChainSafe/offline-election/config"
	"github.com/ChainSafe/offline-election/internal/client"
	"github.com/ChainSafe/offline-election/lib/common"
)

// session is the shared setup of every online subcommand: a connected
// client, the block hash all reads are pinned to, and the resolved
// network format.
type session struct {
	client  *client.Client
	at      common.Hash
	network config.Network
}

// newSession connects to the configured node, pins the run to a block
// and resolves the network address format.
func newSession(ctx context.Context) (*session, error) {
	conn, err := client.Connect(cfg.URI)
	if err != nil {
		return nil, err
	}

	var at common.Hash
	if cfg.At != "" {
		at, err = common.HexToHash(cfg.At)
		if err != nil {
			return nil, fmt.Errorf("invalid --at block hash: %s", err)
		}
	} else {
		at, err = conn.HeadHash(ctx)
		if err != nil {
			return nil, err
		}
	}

	var network config.Network
	if cfg.Network != "" {
		network, err = config.NetworkByName(cfg.Network)
		if err != nil {
			return nil, err
		}
	} else {
		spec, err := conn.SpecName(ctx, at)
		if err != nil {
			return nil, err
		}
		network = config.NetworkForSpec(spec)
		logger.Debug("resolved network from runtime", "spec", spec,
			"network", network.Name)
	}

	issuance, err := conn.TotalIssuance(ctx, at)
	if err != nil {
		return nil, err
	}
	logger.Info("pinned chain state", "block", at.Short(),
		"network", network.Name,
		"total_issuance", network.DisplayBalance(issuance))

	return &session{client: conn, at: at, network: network}, nil
}

// offlineNetwork resolves the network format for runs from a snapshot
// file, where no runtime is available to ask.
func offlineNetwork() (config.Network, error) {
	if cfg.Network == "" {
		logger.Warn("no --network given for an offline run, using the generic substrate format")
		return config.NetworkForSpec(""), nil
	}
	return config.NetworkByName(cfg.Network)
}
