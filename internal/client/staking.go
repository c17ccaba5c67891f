// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"

	"github.com/ChainSafe/offline-election/lib/common"
	"github.com/ChainSafe/offline-election/lib/election"
)

// ValidatorCount returns staking::validator_count() at the block.
func (c *Client) ValidatorCount(ctx context.Context, at common.Hash) (uint32, error) {
	var count types.U32
	ok, err := c.getPlain(ctx, at, "Staking", "ValidatorCount", &count)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return uint32(count), nil
}

// Validators returns the stashes with a declared intent to validate,
// the keys of the staking::validators map.
func (c *Client) Validators(ctx context.Context, at common.Hash) ([]election.AccountID, error) {
	return c.mapKeys(ctx, at, "Staking", "Validators")
}

// BondedStake returns the active bonded balance of a stash. A stash
// without a controller or ledger has zero bonded stake.
func (c *Client) BondedStake(ctx context.Context, at common.Hash, stash election.AccountID) (*big.Int, error) {
	var controller types.AccountID
	ok, err := c.getMapEntry(ctx, at, "Staking", "Bonded", stash, &controller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return new(big.Int), nil
	}

	var ledger ledgerRecord
	ok, err = c.getMapEntry(ctx, at, "Staking", "Ledger", election.AccountID(controller), &ledger)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Warn("stash has a controller but no ledger", "stash", stash)
		return new(big.Int), nil
	}
	return compactToBig(ledger.Active), nil
}

// Nominators returns all declared nominations at the block.
func (c *Client) Nominators(ctx context.Context, at common.Hash) ([]election.Nomination, error) {
	accounts, err := c.mapKeys(ctx, at, "Staking", "Nominators")
	if err != nil {
		return nil, err
	}

	nominations := make([]election.Nomination, 0, len(accounts))
	for _, who := range accounts {
		var record nominationsRecord
		ok, err := c.getMapEntry(ctx, at, "Staking", "Nominators", who, &record)
		if err != nil {
			return nil, fmt.Errorf("nominator %s: %s", who, err)
		}
		if !ok {
			continue
		}
		nominations = append(nominations, election.Nomination{
			Who:         who,
			Targets:     accountIDs(record.Targets),
			SubmittedIn: uint32(record.SubmittedIn),
		})
	}
	logger.Debug("fetched nominators", "count", len(nominations))
	return nominations, nil
}

// SlashingSpan returns the slashing history of a stash, or nil if the
// stash was never slashed.
func (c *Client) SlashingSpan(ctx context.Context, at common.Hash, stash election.AccountID) (*election.SlashingSpan, error) {
	var record slashingSpansRecord
	ok, err := c.getMapEntry(ctx, at, "Staking", "SlashingSpans", stash, &record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &election.SlashingSpan{
		LastNonzeroSlash: uint32(record.LastNonzeroSlash),
	}, nil
}

// SessionValidators returns session::validators() at the block.
func (c *Client) SessionValidators(ctx context.Context, at common.Hash) ([]election.AccountID, error) {
	var validators []types.AccountID
	ok, err := c.getPlain(ctx, at, "Session", "Validators", &validators)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return accountIDs(validators), nil
}
