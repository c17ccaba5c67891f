// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"fmt"
	"sort"
	"time"

	"github.com/ChainSafe/offline-election/lib/phragmen"
)

// Params configures one election run.
type Params struct {
	// Winners is the number of seats to fill.
	Winners int
	// Iterations is the number of post-election balancing rounds.
	Iterations int
	// Reduce removes redundant support graph edges after balancing.
	Reduce bool
}

// RunElection executes the election over a normalized snapshot. The
// snapshot is not modified; the returned result is owned by the
// caller.
//
// Fails with ErrInsufficientCandidates when fewer electable
// candidates exist than requested winners. Inconsistent totals after
// balancing or reduction fail with ErrInternalInvariant.
func RunElection(snapshot *Snapshot, params Params) (*Result, error) {
	if params.Winners <= 0 {
		return nil, fmt.Errorf("%w: %d", errNoWinnersRequested, params.Winners)
	}
	if params.Iterations < 0 {
		return nil, fmt.Errorf("%w: %d", errNegativeIterations, params.Iterations)
	}
	if err := validateSnapshot(snapshot); err != nil {
		return nil, err
	}
	if len(snapshot.Candidates) < params.Winners {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrInsufficientCandidates,
			params.Winners, len(snapshot.Candidates))
	}

	candidates, voters := solverInputs(snapshot)

	started := time.Now()
	winnerKeys, assignments, err := phragmen.Solve(candidates, voters, params.Winners)
	if err != nil {
		return nil, err
	}
	if len(winnerKeys) < params.Winners {
		return nil, fmt.Errorf("%w: want %d, only %d electable",
			ErrInsufficientCandidates, params.Winners, len(winnerKeys))
	}
	logger.Debug("sequential phragmen done", "winners", len(winnerKeys),
		"took", time.Since(started))

	phragmen.Balance(assignments, params.Iterations)

	preReduce, err := phragmen.SupportTotals(assignments)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInternalInvariant, err)
	}
	if params.Reduce {
		removed := phragmen.Reduce(assignments)
		logger.Info("support graph reduced", "removed_edges", removed)

		postReduce, err := phragmen.SupportTotals(assignments)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInternalInvariant, err)
		}
		for target, total := range preReduce {
			if postReduce[target] != total {
				return nil, fmt.Errorf(
					"%w: reduction changed backing of %x from %d to %d",
					ErrInternalInvariant, target, total, postReduce[target])
			}
		}
	}

	if err := checkConservation(snapshot, assignments); err != nil {
		return nil, err
	}

	return buildResult(snapshot, winnerKeys, assignments)
}

// solverInputs flattens the snapshot into solver candidates and
// voters. Candidates with nonzero self stake vote for themselves with
// it, matching the chain's behaviour for validator stashes.
func solverInputs(snapshot *Snapshot) (candidates []string, voters []phragmen.Voter) {
	candidates = make([]string, len(snapshot.Candidates))
	for i, candidate := range snapshot.Candidates {
		key := string(candidate.ID[:])
		candidates[i] = key
		if candidate.Weight > 0 {
			voters = append(voters, phragmen.Voter{
				Who:     key,
				Budget:  candidate.Weight,
				Targets: []string{key},
			})
		}
	}

	for _, voter := range snapshot.Voters {
		targets := make([]string, len(voter.Targets))
		for i, target := range voter.Targets {
			targets[i] = string(target[:])
		}
		voters = append(voters, phragmen.Voter{
			Who:     string(voter.ID[:]),
			Budget:  voter.Weight,
			Targets: targets,
		})
	}
	return candidates, voters
}

// checkConservation verifies no voter ended up committing more weight
// than its normalized stake.
func checkConservation(snapshot *Snapshot, assignments []phragmen.Assignment) error {
	budgets := make(map[string]uint64, len(snapshot.Voters)+len(snapshot.Candidates))
	for _, candidate := range snapshot.Candidates {
		budgets[string(candidate.ID[:])] += candidate.Weight
	}
	for _, voter := range snapshot.Voters {
		budgets[string(voter.ID[:])] += voter.Weight
	}

	committed := make(map[string]uint64, len(assignments))
	for _, assignment := range assignments {
		for _, edge := range assignment.Distribution {
			committed[assignment.Who] += edge.Weight
		}
	}
	for who, total := range committed {
		if total > budgets[who] {
			return fmt.Errorf("%w: voter %x committed %d of budget %d",
				ErrInternalInvariant, who, total, budgets[who])
		}
	}
	return nil
}

func buildResult(snapshot *Snapshot, winnerKeys []string,
	assignments []phragmen.Assignment) (*Result, error) {
	totals, err := phragmen.SupportTotals(assignments)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInternalInvariant, err)
	}

	result := &Result{
		Block:    snapshot.Block,
		Winners:  make([]AccountID, len(winnerKeys)),
		Supports: make(map[AccountID]*Support, len(winnerKeys)),
	}
	for i, key := range winnerKeys {
		winner := NewAccountID([]byte(key))
		result.Winners[i] = winner
		result.Supports[winner] = &Support{Total: totals[key]}
	}

	for _, assignment := range assignments {
		voter := NewAccountID([]byte(assignment.Who))
		for _, edge := range assignment.Distribution {
			if edge.Weight == 0 {
				continue
			}
			support, ok := result.Supports[NewAccountID([]byte(edge.Target))]
			if !ok {
				return nil, fmt.Errorf("%w: assignment to non-winner %x",
					ErrInternalInvariant, edge.Target)
			}
			support.Backers = append(support.Backers, Backing{
				Voter:  voter,
				Weight: edge.Weight,
			})
		}
	}

	for _, support := range result.Supports {
		backers := support.Backers
		sort.Slice(backers, func(i, j int) bool {
			return lessID(backers[i].Voter, backers[j].Voter)
		})
	}
	return result, nil
}
