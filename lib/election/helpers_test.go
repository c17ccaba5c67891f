// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"context"
	"math/big"

	"github.com/ChainSafe/offline-election/lib/common"
)

// accountID builds a test account id from a single marker byte.
func accountID(marker byte) (id AccountID) {
	for i := range id {
		id[i] = marker
	}
	return id
}

var testBlock = common.NewHash([]byte{0xde, 0xad, 0xbe, 0xef})

// stubStakingSource is a hand rolled StakingSource for tests; any of
// the err fields forces the matching method to fail.
type stubStakingSource struct {
	validators []AccountID
	stakes     map[AccountID]*big.Int
	nominators []Nomination
	spans      map[AccountID]*SlashingSpan
	count      uint32

	errValidators error
	errStake      error
	errNominators error
	errSpans      error
}

func (s *stubStakingSource) ValidatorCount(_ context.Context, _ common.Hash) (uint32, error) {
	return s.count, nil
}

func (s *stubStakingSource) Validators(_ context.Context, _ common.Hash) ([]AccountID, error) {
	if s.errValidators != nil {
		return nil, s.errValidators
	}
	return s.validators, nil
}

func (s *stubStakingSource) BondedStake(_ context.Context, _ common.Hash,
	stash AccountID) (*big.Int, error) {
	if s.errStake != nil {
		return nil, s.errStake
	}
	stake, ok := s.stakes[stash]
	if !ok {
		return new(big.Int), nil
	}
	return stake, nil
}

func (s *stubStakingSource) Nominators(_ context.Context, _ common.Hash) ([]Nomination, error) {
	if s.errNominators != nil {
		return nil, s.errNominators
	}
	return s.nominators, nil
}

func (s *stubStakingSource) SlashingSpan(_ context.Context, _ common.Hash,
	stash AccountID) (*SlashingSpan, error) {
	if s.errSpans != nil {
		return nil, s.errSpans
	}
	return s.spans[stash], nil
}

// stubCouncilSource is a hand rolled CouncilSource for tests.
type stubCouncilSource struct {
	members    []CouncilSeat
	runnersUp  []CouncilSeat
	candidates []AccountID
	votes      []CouncilVote

	errVotes error
}

func (s *stubCouncilSource) DesiredSeats(_ context.Context, _ common.Hash) (uint32, uint32, error) {
	return uint32(len(s.members)), uint32(len(s.runnersUp)), nil
}

func (s *stubCouncilSource) Members(_ context.Context, _ common.Hash) ([]CouncilSeat, error) {
	return s.members, nil
}

func (s *stubCouncilSource) RunnersUp(_ context.Context, _ common.Hash) ([]CouncilSeat, error) {
	return s.runnersUp, nil
}

func (s *stubCouncilSource) Candidates(_ context.Context, _ common.Hash) ([]AccountID, error) {
	return s.candidates, nil
}

func (s *stubCouncilSource) Votes(_ context.Context, _ common.Hash) ([]CouncilVote, error) {
	if s.errVotes != nil {
		return nil, s.errVotes
	}
	return s.votes, nil
}
