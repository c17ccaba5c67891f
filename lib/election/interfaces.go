// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"context"
	"math/big"

	"github.com/ChainSafe/offline-election/lib/common"
)

// Nomination is one nominator's declared target list, together with
// the era it was submitted in.
type Nomination struct {
	Who         AccountID
	Targets     []AccountID
	SubmittedIn uint32
}

// SlashingSpan is the slashing history summary of one validator
// stash. A nomination submitted in an era at or before
// LastNonzeroSlash no longer counts towards that target.
type SlashingSpan struct {
	LastNonzeroSlash uint32
}

// CouncilVote is one account's council ballot.
type CouncilVote struct {
	Who     AccountID
	Stake   *big.Int
	Targets []AccountID
}

// CouncilSeat is a sitting member or runner-up of the council.
type CouncilSeat struct {
	Who   AccountID
	Stake *big.Int
}

// ChainSource resolves the block to pin a run to. All reads of a
// single run use the one hash it returns.
type ChainSource interface {
	// HeadHash returns the hash of the current chain head.
	HeadHash(ctx context.Context) (common.Hash, error)
	// SpecName returns the runtime spec name at the given block,
	// used to default the network address format.
	SpecName(ctx context.Context, at common.Hash) (string, error)
	// TotalIssuance returns the total token issuance at the block.
	TotalIssuance(ctx context.Context, at common.Hash) (*big.Int, error)
}

// StakingSource provides the staking election state at a block.
type StakingSource interface {
	// ValidatorCount returns the number of validators the chain
	// wants elected.
	ValidatorCount(ctx context.Context, at common.Hash) (uint32, error)
	// Validators returns the stashes with a declared intent to
	// validate.
	Validators(ctx context.Context, at common.Hash) ([]AccountID, error)
	// BondedStake returns the active bonded balance of a stash, or
	// zero if the stash has no ledger.
	BondedStake(ctx context.Context, at common.Hash, stash AccountID) (*big.Int, error)
	// Nominators returns all declared nominations.
	Nominators(ctx context.Context, at common.Hash) ([]Nomination, error)
	// SlashingSpan returns the slashing history of a stash, or nil
	// if it was never slashed.
	SlashingSpan(ctx context.Context, at common.Hash, stash AccountID) (*SlashingSpan, error)
}

// CouncilSource provides the council (elections-phragmen) state at a
// block.
type CouncilSource interface {
	// DesiredSeats returns the configured member and runner-up
	// counts.
	DesiredSeats(ctx context.Context, at common.Hash) (members, runnersUp uint32, err error)
	// Members returns the sitting council.
	Members(ctx context.Context, at common.Hash) ([]CouncilSeat, error)
	// RunnersUp returns the current runners-up.
	RunnersUp(ctx context.Context, at common.Hash) ([]CouncilSeat, error)
	// Candidates returns the accounts with a submitted candidacy.
	Candidates(ctx context.Context, at common.Hash) ([]AccountID, error)
	// Votes returns all council ballots.
	Votes(ctx context.Context, at common.Hash) ([]CouncilVote, error)
}

// SessionSource provides the active validator set, for read-only
// views layered on the same scraper.
type SessionSource interface {
	// SessionValidators returns session::validators() at the block.
	SessionValidators(ctx context.Context, at common.Hash) ([]AccountID, error)
}
