// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package client

import (
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"

	"github.com/ChainSafe/offline-election/lib/election"
)

// SCALE mirrors of the runtime storage records read by the scraper.
// Field order must match the runtime declaration; records with
// trailing fields we do not use (the staking ledger) only declare the
// leading fields and leave the rest of the value undecoded.

// nominationsRecord mirrors pallet_staking::Nominations.
type nominationsRecord struct {
	Targets     []types.AccountID
	SubmittedIn types.U32
	Suppressed  bool
}

// ledgerRecord mirrors the leading fields of
// pallet_staking::StakingLedger. Unlocking chunks and claimed rewards
// follow on the wire and are not decoded.
type ledgerRecord struct {
	Stash  types.AccountID
	Total  types.UCompact
	Active types.UCompact
}

// slashingSpansRecord mirrors pallet_staking::slashing::SlashingSpans.
type slashingSpansRecord struct {
	SpanIndex        types.U32
	LastStart        types.U32
	LastNonzeroSlash types.U32
	Prior            []types.U32
}

// seatHolderRecord mirrors pallet_elections_phragmen::SeatHolder.
type seatHolderRecord struct {
	Who     types.AccountID
	Stake   types.U128
	Deposit types.U128
}

// candidacyRecord mirrors one element of the candidates vector, a
// (who, deposit) tuple.
type candidacyRecord struct {
	Who     types.AccountID
	Deposit types.U128
}

// voterRecord mirrors pallet_elections_phragmen::Voter.
type voterRecord struct {
	Votes   []types.AccountID
	Stake   types.U128
	Deposit types.U128
}

func accountIDs(in []types.AccountID) []election.AccountID {
	out := make([]election.AccountID, len(in))
	for i, id := range in {
		out[i] = election.AccountID(id)
	}
	return out
}

func u128ToBig(v types.U128) *big.Int {
	if v.Int == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v.Int)
}

func compactToBig(v types.UCompact) *big.Int {
	raw := big.Int(v)
	return new(big.Int).Set(&raw)
}
