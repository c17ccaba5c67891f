// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package client reads election state from a live substrate node over
// its websocket RPC. All reads of a run are pinned to one block hash
// so the snapshot is internally consistent.
package client

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	log "github.com/ChainSafe/log15"
	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"

	"github.com/ChainSafe/offline-election/lib/common"
	"github.com/ChainSafe/offline-election/lib/election"
)

var logger = log.New("pkg", "client")

// electionsPallets are the names the elections-phragmen pallet has
// carried across runtimes, tried in order.
var electionsPallets = []string{"PhragmenElection", "Elections", "ElectionsPhragmen"}

// Client scrapes chain, staking, council and session state from one
// node. It implements the election source interfaces.
type Client struct {
	api *gsrpc.SubstrateAPI

	mu        sync.Mutex
	metaAt    common.Hash
	meta      *types.Metadata
	elections string
}

var (
	_ election.ChainSource   = (*Client)(nil)
	_ election.StakingSource = (*Client)(nil)
	_ election.CouncilSource = (*Client)(nil)
	_ election.SessionSource = (*Client)(nil)
)

// Connect dials the websocket endpoint of a substrate node.
func Connect(uri string) (*Client, error) {
	api, err := gsrpc.NewSubstrateAPI(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrConnect, uri, err)
	}
	logger.Debug("connected to node", "uri", uri)
	return &Client{api: api}, nil
}

// HeadHash returns the hash of the current chain head.
func (c *Client) HeadHash(ctx context.Context) (common.Hash, error) {
	if err := ctx.Err(); err != nil {
		return common.Hash{}, err
	}
	hash, err := c.api.RPC.Chain.GetBlockHashLatest()
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting chain head: %s", err)
	}
	return common.Hash(hash), nil
}

// SpecName returns the runtime spec name at the given block.
func (c *Client) SpecName(ctx context.Context, at common.Hash) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	version, err := c.api.RPC.State.GetRuntimeVersion(types.Hash(at))
	if err != nil {
		return "", fmt.Errorf("getting runtime version: %s", err)
	}
	return version.SpecName, nil
}

// TotalIssuance returns balances::total_issuance() at the block.
func (c *Client) TotalIssuance(ctx context.Context, at common.Hash) (*big.Int, error) {
	var issuance types.U128
	ok, err := c.getPlain(ctx, at, "Balances", "TotalIssuance", &issuance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return new(big.Int), nil
	}
	return u128ToBig(issuance), nil
}

// metadata returns the runtime metadata at the block, fetching it at
// most once per block hash.
func (c *Client) metadata(ctx context.Context, at common.Hash) (*types.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.meta != nil && c.metaAt == at {
		return c.meta, nil
	}

	meta, err := c.api.RPC.State.GetMetadata(types.Hash(at))
	if err != nil {
		return nil, fmt.Errorf("getting metadata: %s", err)
	}
	if err := checkMetadataVersion(meta); err != nil {
		return nil, err
	}

	c.meta = meta
	c.metaAt = at
	c.elections = ""
	return meta, nil
}

// checkMetadataVersion rejects runtimes that predate metadata v14,
// the first version to expose pallet constants in a decodable form.
func checkMetadataVersion(meta *types.Metadata) error {
	if meta.Version != 14 {
		return fmt.Errorf("%w: version %d", ErrUnsupportedMetadata, meta.Version)
	}
	return nil
}

// electionsPallet resolves the runtime name of the elections-phragmen
// pallet at the block.
func (c *Client) electionsPallet(ctx context.Context, at common.Hash) (string, error) {
	meta, err := c.metadata(ctx, at)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.elections != "" {
		return c.elections, nil
	}

	name, err := resolveElectionsPallet(meta)
	if err != nil {
		return "", err
	}
	logger.Debug("resolved elections pallet", "name", name)
	c.elections = name
	return name, nil
}

func resolveElectionsPallet(meta *types.Metadata) (string, error) {
	for _, name := range electionsPallets {
		if meta.ExistsModuleMetadata(name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: tried %v", ErrPalletNotFound, electionsPallets)
}

// constantU32 reads a u32 pallet constant from the metadata.
func (c *Client) constantU32(ctx context.Context, at common.Hash, pallet, name string) (uint32, error) {
	meta, err := c.metadata(ctx, at)
	if err != nil {
		return 0, err
	}
	return metadataConstantU32(meta, pallet, name)
}

func metadataConstantU32(meta *types.Metadata, pallet, name string) (uint32, error) {
	for _, mod := range meta.AsMetadataV14.Pallets {
		if string(mod.Name) != pallet {
			continue
		}
		for _, constant := range mod.Constants {
			if string(constant.Name) != name {
				continue
			}
			var value types.U32
			if err := codec.Decode(constant.Value, &value); err != nil {
				return 0, fmt.Errorf("decoding constant %s.%s: %s", pallet, name, err)
			}
			return uint32(value), nil
		}
	}
	return 0, fmt.Errorf("%w: %s.%s", ErrConstantNotFound, pallet, name)
}

// getPlain reads a plain (non-map) storage value. It reports whether
// the value exists.
func (c *Client) getPlain(ctx context.Context, at common.Hash, pallet, item string, target any) (bool, error) {
	meta, err := c.metadata(ctx, at)
	if err != nil {
		return false, err
	}
	key, err := types.CreateStorageKey(meta, pallet, item)
	if err != nil {
		return false, fmt.Errorf("building %s.%s key: %s", pallet, item, err)
	}
	ok, err := c.api.RPC.State.GetStorage(key, target, types.Hash(at))
	if err != nil {
		return false, fmt.Errorf("reading %s.%s: %s", pallet, item, err)
	}
	return ok, nil
}

// getMapEntry reads one entry of an account-keyed storage map.
func (c *Client) getMapEntry(ctx context.Context, at common.Hash, pallet, item string, who election.AccountID, target any) (bool, error) {
	meta, err := c.metadata(ctx, at)
	if err != nil {
		return false, err
	}
	key, err := types.CreateStorageKey(meta, pallet, item, who[:])
	if err != nil {
		return false, fmt.Errorf("building %s.%s key: %s", pallet, item, err)
	}
	ok, err := c.api.RPC.State.GetStorage(key, target, types.Hash(at))
	if err != nil {
		return false, fmt.Errorf("reading %s.%s: %s", pallet, item, err)
	}
	return ok, nil
}

// mapKeys enumerates the accounts keyed under a storage map.
func (c *Client) mapKeys(ctx context.Context, at common.Hash, pallet, item string) ([]election.AccountID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys, err := c.api.RPC.State.GetKeys(mapPrefix(pallet, item), types.Hash(at))
	if err != nil {
		return nil, fmt.Errorf("listing %s.%s keys: %s", pallet, item, err)
	}

	accounts := make([]election.AccountID, 0, len(keys))
	for _, key := range keys {
		who, err := accountFromKey(key)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %s", pallet, item, err)
		}
		accounts = append(accounts, who)
	}
	return accounts, nil
}
