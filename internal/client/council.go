// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package client

import (
	"context"
	"fmt"

	"github.com/ChainSafe/offline-election/lib/common"
	"github.com/ChainSafe/offline-election/lib/election"
)

// DesiredSeats returns the configured council member and runner-up
// counts, read from the pallet constants.
func (c *Client) DesiredSeats(ctx context.Context, at common.Hash) (members, runnersUp uint32, err error) {
	pallet, err := c.electionsPallet(ctx, at)
	if err != nil {
		return 0, 0, err
	}
	members, err = c.constantU32(ctx, at, pallet, "DesiredMembers")
	if err != nil {
		return 0, 0, err
	}
	runnersUp, err = c.constantU32(ctx, at, pallet, "DesiredRunnersUp")
	if err != nil {
		return 0, 0, err
	}
	return members, runnersUp, nil
}

// Members returns the sitting council.
func (c *Client) Members(ctx context.Context, at common.Hash) ([]election.CouncilSeat, error) {
	return c.seats(ctx, at, "Members")
}

// RunnersUp returns the current runners-up.
func (c *Client) RunnersUp(ctx context.Context, at common.Hash) ([]election.CouncilSeat, error) {
	return c.seats(ctx, at, "RunnersUp")
}

func (c *Client) seats(ctx context.Context, at common.Hash, item string) ([]election.CouncilSeat, error) {
	pallet, err := c.electionsPallet(ctx, at)
	if err != nil {
		return nil, err
	}

	var holders []seatHolderRecord
	ok, err := c.getPlain(ctx, at, pallet, item, &holders)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	seats := make([]election.CouncilSeat, len(holders))
	for i, holder := range holders {
		seats[i] = election.CouncilSeat{
			Who:   election.AccountID(holder.Who),
			Stake: u128ToBig(holder.Stake),
		}
	}
	return seats, nil
}

// Candidates returns the accounts with a submitted candidacy.
func (c *Client) Candidates(ctx context.Context, at common.Hash) ([]election.AccountID, error) {
	pallet, err := c.electionsPallet(ctx, at)
	if err != nil {
		return nil, err
	}

	var candidacies []candidacyRecord
	ok, err := c.getPlain(ctx, at, pallet, "Candidates", &candidacies)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	candidates := make([]election.AccountID, len(candidacies))
	for i, candidacy := range candidacies {
		candidates[i] = election.AccountID(candidacy.Who)
	}
	return candidates, nil
}

// Votes returns all council ballots at the block.
func (c *Client) Votes(ctx context.Context, at common.Hash) ([]election.CouncilVote, error) {
	pallet, err := c.electionsPallet(ctx, at)
	if err != nil {
		return nil, err
	}

	accounts, err := c.mapKeys(ctx, at, pallet, "Voting")
	if err != nil {
		return nil, err
	}

	votes := make([]election.CouncilVote, 0, len(accounts))
	for _, who := range accounts {
		var record voterRecord
		ok, err := c.getMapEntry(ctx, at, pallet, "Voting", who, &record)
		if err != nil {
			return nil, fmt.Errorf("council voter %s: %s", who, err)
		}
		if !ok {
			continue
		}
		votes = append(votes, election.CouncilVote{
			Who:     who,
			Stake:   u128ToBig(record.Stake),
			Targets: accountIDs(record.Votes),
		})
	}
	logger.Debug("fetched council ballots", "count", len(votes))
	return votes, nil
}
