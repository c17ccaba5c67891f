// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"context"
	"fmt"
	"sort"

	log "github.com/ChainSafe/log15"

	"github.com/ChainSafe/offline-election/lib/common"
)

var logger = log.New("pkg", "election")

// BuildOptions tunes snapshot construction.
type BuildOptions struct {
	// MaxVoters truncates the voter set to the given size when
	// positive. Development and testing only: a truncated snapshot
	// does not predict real elections.
	MaxVoters int
}

// BuildStakingSnapshot assembles the validator election input graph
// at the given block: every stash intending to validate becomes a
// candidate backed by its own bonded stake, and every nominator with
// a live nomination becomes a voter. Nomination targets that are not
// candidates, or that were slashed since the nomination was
// submitted, are dropped.
func BuildStakingSnapshot(ctx context.Context, source StakingSource,
	at common.Hash, opts BuildOptions) (*Snapshot, error) {
	stashes, err := source.Validators(ctx, at)
	if err != nil {
		return nil, fmt.Errorf("%w: validators: %s", ErrDataFetch, err)
	}

	snapshot := &Snapshot{Block: at}
	candidateSet := make(map[AccountID]struct{}, len(stashes))
	for _, stash := range stashes {
		if _, ok := candidateSet[stash]; ok {
			continue
		}
		candidateSet[stash] = struct{}{}

		selfStake, err := source.BondedStake(ctx, at, stash)
		if err != nil {
			return nil, fmt.Errorf("%w: bonded stake of %s: %s",
				ErrDataFetch, stash, err)
		}
		snapshot.Candidates = append(snapshot.Candidates, Candidate{
			ID:        stash,
			SelfStake: selfStake,
		})
	}

	nominations, err := source.Nominators(ctx, at)
	if err != nil {
		return nil, fmt.Errorf("%w: nominators: %s", ErrDataFetch, err)
	}
	sort.Slice(nominations, func(i, j int) bool {
		return lessID(nominations[i].Who, nominations[j].Who)
	})
	if opts.MaxVoters > 0 && len(nominations) > opts.MaxVoters {
		logger.Warn("truncating voter set; do not use for real predictions",
			"total", len(nominations), "max", opts.MaxVoters)
		nominations = nominations[:opts.MaxVoters]
	}

	spans := make(map[AccountID]*SlashingSpan)
	for _, nomination := range nominations {
		stake, err := source.BondedStake(ctx, at, nomination.Who)
		if err != nil {
			return nil, fmt.Errorf("%w: bonded stake of %s: %s",
				ErrDataFetch, nomination.Who, err)
		}

		var targets []AccountID
		for _, target := range nomination.Targets {
			if _, ok := candidateSet[target]; !ok {
				continue
			}
			span, ok := spans[target]
			if !ok {
				span, err = source.SlashingSpan(ctx, at, target)
				if err != nil {
					return nil, fmt.Errorf("%w: slashing span of %s: %s",
						ErrDataFetch, target, err)
				}
				spans[target] = span
			}
			if span != nil && span.LastNonzeroSlash >= nomination.SubmittedIn {
				logger.Debug("dropping slashed nomination target",
					"nominator", nomination.Who, "target", target)
				continue
			}
			targets = append(targets, target)
		}
		if len(targets) == 0 {
			continue
		}

		snapshot.Voters = append(snapshot.Voters, Voter{
			ID:      nomination.Who,
			Stake:   stake,
			Targets: targets,
		})
	}

	sortSnapshot(snapshot)
	logger.Info("staking snapshot built", "block", at.Short(),
		"candidates", len(snapshot.Candidates), "voters", len(snapshot.Voters))
	return snapshot, nil
}

// BuildCouncilSnapshot assembles the council election input graph:
// submitted candidacies plus sitting members and runners-up form the
// candidate set, and the voting map provides the voters. Council
// candidates carry no implicit self vote.
func BuildCouncilSnapshot(ctx context.Context, source CouncilSource,
	at common.Hash, opts BuildOptions) (*Snapshot, error) {
	snapshot := &Snapshot{Block: at}
	candidateSet := make(map[AccountID]struct{})

	addCandidate := func(id AccountID) {
		if _, ok := candidateSet[id]; ok {
			return
		}
		candidateSet[id] = struct{}{}
		snapshot.Candidates = append(snapshot.Candidates, Candidate{
			ID:        id,
			SelfStake: nil,
		})
	}

	candidates, err := source.Candidates(ctx, at)
	if err != nil {
		return nil, fmt.Errorf("%w: council candidates: %s", ErrDataFetch, err)
	}
	for _, candidate := range candidates {
		addCandidate(candidate)
	}

	members, err := source.Members(ctx, at)
	if err != nil {
		return nil, fmt.Errorf("%w: council members: %s", ErrDataFetch, err)
	}
	for _, member := range members {
		addCandidate(member.Who)
	}

	runnersUp, err := source.RunnersUp(ctx, at)
	if err != nil {
		return nil, fmt.Errorf("%w: council runners-up: %s", ErrDataFetch, err)
	}
	for _, runnerUp := range runnersUp {
		addCandidate(runnerUp.Who)
	}

	votes, err := source.Votes(ctx, at)
	if err != nil {
		return nil, fmt.Errorf("%w: council votes: %s", ErrDataFetch, err)
	}
	sort.Slice(votes, func(i, j int) bool {
		return lessID(votes[i].Who, votes[j].Who)
	})
	if opts.MaxVoters > 0 && len(votes) > opts.MaxVoters {
		logger.Warn("truncating voter set; do not use for real predictions",
			"total", len(votes), "max", opts.MaxVoters)
		votes = votes[:opts.MaxVoters]
	}

	for _, vote := range votes {
		var targets []AccountID
		for _, target := range vote.Targets {
			if _, ok := candidateSet[target]; ok {
				targets = append(targets, target)
			}
		}
		if len(targets) == 0 {
			continue
		}
		snapshot.Voters = append(snapshot.Voters, Voter{
			ID:      vote.Who,
			Stake:   vote.Stake,
			Targets: targets,
		})
	}

	sortSnapshot(snapshot)
	logger.Info("council snapshot built", "block", at.Short(),
		"candidates", len(snapshot.Candidates), "voters", len(snapshot.Voters))
	return snapshot, nil
}

// DanglingNominator is a nominator with at least one target slashed
// since the nomination was submitted. Such votes are ineffective
// until resubmitted.
type DanglingNominator struct {
	Who     AccountID
	Targets []AccountID
}

// FindDanglingNominators scans all nominations for targets
// invalidated by a slash.
func FindDanglingNominators(ctx context.Context, source StakingSource,
	at common.Hash) ([]DanglingNominator, error) {
	nominations, err := source.Nominators(ctx, at)
	if err != nil {
		return nil, fmt.Errorf("%w: nominators: %s", ErrDataFetch, err)
	}

	spans := make(map[AccountID]*SlashingSpan)
	var dangling []DanglingNominator
	for _, nomination := range nominations {
		var slashed []AccountID
		for _, target := range nomination.Targets {
			span, ok := spans[target]
			if !ok {
				span, err = source.SlashingSpan(ctx, at, target)
				if err != nil {
					return nil, fmt.Errorf("%w: slashing span of %s: %s",
						ErrDataFetch, target, err)
				}
				spans[target] = span
			}
			if span != nil && span.LastNonzeroSlash >= nomination.SubmittedIn {
				slashed = append(slashed, target)
			}
		}
		if len(slashed) > 0 {
			dangling = append(dangling, DanglingNominator{
				Who:     nomination.Who,
				Targets: slashed,
			})
		}
	}

	sort.Slice(dangling, func(i, j int) bool {
		return lessID(dangling[i].Who, dangling[j].Who)
	})
	return dangling, nil
}

// sortSnapshot orders candidates and voters by id so snapshots built
// from unordered storage reads are canonical.
func sortSnapshot(snapshot *Snapshot) {
	sort.Slice(snapshot.Candidates, func(i, j int) bool {
		return lessID(snapshot.Candidates[i].ID, snapshot.Candidates[j].ID)
	})
	sort.Slice(snapshot.Voters, func(i, j int) bool {
		return lessID(snapshot.Voters[i].ID, snapshot.Voters[j].ID)
	})
}

func lessID(a, b AccountID) bool {
	return string(a[:]) < string(b[:])
}
