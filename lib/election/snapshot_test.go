// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStakingSnapshot(t *testing.T) {
	validatorA := accountID(0xa1)
	validatorB := accountID(0xa2)
	nominator := accountID(0xb1)
	outsider := accountID(0xcc)

	source := &stubStakingSource{
		validators: []AccountID{validatorB, validatorA},
		stakes: map[AccountID]*big.Int{
			validatorA: big.NewInt(1000),
			validatorB: big.NewInt(2000),
			nominator:  big.NewInt(500),
		},
		nominators: []Nomination{
			// the outsider target is not a candidate and must be dropped
			{Who: nominator, Targets: []AccountID{validatorA, outsider}, SubmittedIn: 10},
		},
	}

	snapshot, err := BuildStakingSnapshot(context.Background(), source,
		testBlock, BuildOptions{})
	require.NoError(t, err)

	require.Len(t, snapshot.Candidates, 2)
	// candidates are sorted by id regardless of fetch order
	assert.Equal(t, validatorA, snapshot.Candidates[0].ID)
	assert.Equal(t, big.NewInt(1000), snapshot.Candidates[0].SelfStake)
	assert.Equal(t, validatorB, snapshot.Candidates[1].ID)

	require.Len(t, snapshot.Voters, 1)
	assert.Equal(t, nominator, snapshot.Voters[0].ID)
	assert.Equal(t, big.NewInt(500), snapshot.Voters[0].Stake)
	assert.Equal(t, []AccountID{validatorA}, snapshot.Voters[0].Targets)

	assert.Equal(t, testBlock, snapshot.Block)
	assert.NoError(t, validateSnapshot(snapshot))
}

func TestBuildStakingSnapshot_slashedTarget(t *testing.T) {
	validatorA := accountID(0xa1)
	validatorB := accountID(0xa2)
	nominator := accountID(0xb1)

	source := &stubStakingSource{
		validators: []AccountID{validatorA, validatorB},
		stakes: map[AccountID]*big.Int{
			nominator: big.NewInt(500),
		},
		nominators: []Nomination{
			{Who: nominator, Targets: []AccountID{validatorA, validatorB}, SubmittedIn: 10},
		},
		spans: map[AccountID]*SlashingSpan{
			// slashed after the nomination: target dropped
			validatorA: {LastNonzeroSlash: 12},
			// slashed before the nomination: target kept
			validatorB: {LastNonzeroSlash: 9},
		},
	}

	snapshot, err := BuildStakingSnapshot(context.Background(), source,
		testBlock, BuildOptions{})
	require.NoError(t, err)

	require.Len(t, snapshot.Voters, 1)
	assert.Equal(t, []AccountID{validatorB}, snapshot.Voters[0].Targets)
}

func TestBuildStakingSnapshot_maxVoters(t *testing.T) {
	validator := accountID(0xa1)
	source := &stubStakingSource{
		validators: []AccountID{validator},
		stakes:     map[AccountID]*big.Int{},
		nominators: []Nomination{
			{Who: accountID(0xb3), Targets: []AccountID{validator}},
			{Who: accountID(0xb1), Targets: []AccountID{validator}},
			{Who: accountID(0xb2), Targets: []AccountID{validator}},
		},
	}

	snapshot, err := BuildStakingSnapshot(context.Background(), source,
		testBlock, BuildOptions{MaxVoters: 2})
	require.NoError(t, err)

	// truncation happens after sorting, so it is deterministic
	require.Len(t, snapshot.Voters, 2)
	assert.Equal(t, accountID(0xb1), snapshot.Voters[0].ID)
	assert.Equal(t, accountID(0xb2), snapshot.Voters[1].ID)
}

func TestBuildStakingSnapshot_fetchError(t *testing.T) {
	boom := errors.New("connection reset")

	testCases := map[string]*stubStakingSource{
		"validators": {errValidators: boom},
		"nominators": {
			validators:    []AccountID{accountID(0xa1)},
			errNominators: boom,
		},
		"stake": {
			validators: []AccountID{accountID(0xa1)},
			errStake:   boom,
		},
	}

	for name, source := range testCases {
		source := source
		t.Run(name, func(t *testing.T) {
			_, err := BuildStakingSnapshot(context.Background(), source,
				testBlock, BuildOptions{})
			assert.ErrorIs(t, err, ErrDataFetch)
		})
	}
}

func TestBuildCouncilSnapshot(t *testing.T) {
	member := accountID(0xa1)
	runnerUp := accountID(0xa2)
	candidate := accountID(0xa3)
	voter := accountID(0xb1)

	source := &stubCouncilSource{
		members:    []CouncilSeat{{Who: member, Stake: big.NewInt(10)}},
		runnersUp:  []CouncilSeat{{Who: runnerUp, Stake: big.NewInt(5)}},
		candidates: []AccountID{candidate},
		votes: []CouncilVote{
			{Who: voter, Stake: big.NewInt(100),
				Targets: []AccountID{member, candidate, accountID(0xff)}},
			// no surviving targets: voter dropped
			{Who: accountID(0xb2), Stake: big.NewInt(50),
				Targets: []AccountID{accountID(0xfe)}},
		},
	}

	snapshot, err := BuildCouncilSnapshot(context.Background(), source,
		testBlock, BuildOptions{})
	require.NoError(t, err)

	assert.Len(t, snapshot.Candidates, 3)
	for _, candidate := range snapshot.Candidates {
		assert.Nil(t, candidate.SelfStake, "council candidates have no self vote")
	}

	require.Len(t, snapshot.Voters, 1)
	assert.Equal(t, voter, snapshot.Voters[0].ID)
	assert.Equal(t, []AccountID{member, candidate}, snapshot.Voters[0].Targets)
	assert.NoError(t, validateSnapshot(snapshot))
}

func TestBuildCouncilSnapshot_fetchError(t *testing.T) {
	source := &stubCouncilSource{errVotes: errors.New("timeout")}
	_, err := BuildCouncilSnapshot(context.Background(), source,
		testBlock, BuildOptions{})
	assert.ErrorIs(t, err, ErrDataFetch)
}

func TestFindDanglingNominators(t *testing.T) {
	validatorA := accountID(0xa1)
	validatorB := accountID(0xa2)

	source := &stubStakingSource{
		nominators: []Nomination{
			{Who: accountID(0xb2), Targets: []AccountID{validatorA}, SubmittedIn: 5},
			{Who: accountID(0xb1), Targets: []AccountID{validatorA, validatorB}, SubmittedIn: 5},
			{Who: accountID(0xb3), Targets: []AccountID{validatorB}, SubmittedIn: 9},
		},
		spans: map[AccountID]*SlashingSpan{
			validatorB: {LastNonzeroSlash: 8},
		},
	}

	dangling, err := FindDanglingNominators(context.Background(), source, testBlock)
	require.NoError(t, err)

	// only nominations at or before the slash dangle, sorted by nominator
	require.Len(t, dangling, 1)
	assert.Equal(t, accountID(0xb1), dangling[0].Who)
	assert.Equal(t, []AccountID{validatorB}, dangling[0].Targets)
}
