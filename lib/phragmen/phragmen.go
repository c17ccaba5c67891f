// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package phragmen implements the weighted election primitives used
// by substrate's staking and council elections: sequential Phragmén
// selection, iterative stake balancing and redundant edge reduction.
//
// Load arithmetic uses exact rationals, so for a fixed input the
// output is identical across runs. Ties on candidate score are broken
// by lexicographic candidate id ordering.
package phragmen

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"
	"sort"
)

var (
	// ErrInvalidWinnerCount is returned by Solve for a negative
	// winner count.
	ErrInvalidWinnerCount = errors.New("winner count cannot be negative")

	// ErrWeightOverflow is returned when summed edge weights exceed
	// the uint64 domain. Clamped vote weights make this structurally
	// impossible for sane snapshots, so it signals a bug upstream.
	ErrWeightOverflow = errors.New("support total overflows uint64")
)

// Voter is one account voting with its whole budget across a set of
// candidate targets.
type Voter struct {
	Who     string
	Budget  uint64
	Targets []string
}

// StakedEdge is one (candidate, weight) share of a voter's budget.
type StakedEdge struct {
	Target string
	Weight uint64
}

// Assignment is the post-election distribution of one voter's budget
// across its elected targets. Edges to elected targets are kept even
// at weight zero so that balancing may move stake onto them.
type Assignment struct {
	Who          string
	Budget       uint64
	Distribution []StakedEdge
}

type candidateNode struct {
	id       string
	approval *big.Int
	elected  bool
	score    *big.Rat
	load     *big.Rat
}

type voterEdge struct {
	candidate *candidateNode
	load      *big.Rat
}

type voterNode struct {
	who    string
	budget uint64
	load   *big.Rat
	edges  []*voterEdge
}

// Solve runs sequential Phragmén over the given candidates and voters
// and returns up to k winners in election order, along with the
// resulting per-voter stake assignments.
//
// A candidate is electable only while it has nonzero approval stake.
// If electable candidates run out before k rounds the shorter winner
// set is returned; the caller decides whether that is an error.
// Voter targets not present in the candidate set are ignored.
func Solve(candidates []string, voters []Voter, k int) (
	winners []string, assignments []Assignment, err error) {
	if k < 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidWinnerCount, k)
	}

	candidateNodes := make([]*candidateNode, 0, len(candidates))
	candidatesByID := make(map[string]*candidateNode, len(candidates))
	for _, id := range candidates {
		if _, ok := candidatesByID[id]; ok {
			continue
		}
		node := &candidateNode{
			id:       id,
			approval: new(big.Int),
			load:     new(big.Rat),
		}
		candidateNodes = append(candidateNodes, node)
		candidatesByID[id] = node
	}
	sort.Slice(candidateNodes, func(i, j int) bool {
		return candidateNodes[i].id < candidateNodes[j].id
	})

	voterNodes := make([]*voterNode, 0, len(voters))
	for _, voter := range voters {
		node := &voterNode{
			who:    voter.Who,
			budget: voter.Budget,
			load:   new(big.Rat),
		}
		budget := new(big.Int).SetUint64(voter.Budget)
		seen := make(map[string]struct{}, len(voter.Targets))
		for _, target := range voter.Targets {
			candidate, ok := candidatesByID[target]
			if !ok {
				continue
			}
			if _, dup := seen[target]; dup {
				continue
			}
			seen[target] = struct{}{}
			candidate.approval.Add(candidate.approval, budget)
			node.edges = append(node.edges, &voterEdge{candidate: candidate})
		}
		sort.Slice(node.edges, func(i, j int) bool {
			return node.edges[i].candidate.id < node.edges[j].candidate.id
		})
		voterNodes = append(voterNodes, node)
	}
	sort.Slice(voterNodes, func(i, j int) bool {
		return voterNodes[i].who < voterNodes[j].who
	})

	for round := 0; round < k; round++ {
		winner := electOne(candidateNodes, voterNodes)
		if winner == nil {
			break
		}
		winners = append(winners, winner.id)
	}

	return winners, buildAssignments(voterNodes), nil
}

// electOne runs one round of selection: score every electable
// candidate by its marginal load per unit of backing, elect the
// lowest and propagate the new load to its backers.
func electOne(candidates []*candidateNode, voters []*voterNode) *candidateNode {
	for _, candidate := range candidates {
		if candidate.elected || candidate.approval.Sign() == 0 {
			candidate.score = nil
			continue
		}
		candidate.score = new(big.Rat).SetFrac(big.NewInt(1), candidate.approval)
	}

	contribution := new(big.Rat)
	for _, voter := range voters {
		if voter.load.Sign() == 0 || voter.budget == 0 {
			continue
		}
		scaledLoad := new(big.Rat).Mul(
			voter.load, new(big.Rat).SetUint64(voter.budget))
		for _, edge := range voter.edges {
			candidate := edge.candidate
			if candidate.score == nil {
				continue
			}
			contribution.SetFrac(scaledLoad.Num(), scaledLoad.Denom())
			contribution.Quo(contribution, new(big.Rat).SetInt(candidate.approval))
			candidate.score.Add(candidate.score, contribution)
		}
	}

	var winner *candidateNode
	for _, candidate := range candidates {
		if candidate.score == nil {
			continue
		}
		// candidates are id sorted, so strict less keeps the
		// smallest id on a tie
		if winner == nil || candidate.score.Cmp(winner.score) < 0 {
			winner = candidate
		}
	}
	if winner == nil {
		return nil
	}

	winner.elected = true
	winner.load.Set(winner.score)
	for _, voter := range voters {
		for _, edge := range voter.edges {
			if edge.candidate != winner {
				continue
			}
			edge.load = new(big.Rat).Sub(winner.load, voter.load)
			if edge.load.Sign() < 0 {
				edge.load.SetInt64(0)
			}
			voter.load.Set(winner.load)
		}
	}
	return winner
}

// buildAssignments converts accumulated edge loads into integer stake
// weights. A voter's budget splits across its elected targets in
// proportion to the edge loads; integer division remainders go to the
// last elected edge so the full budget stays committed.
func buildAssignments(voters []*voterNode) []Assignment {
	var assignments []Assignment
	for _, voter := range voters {
		if voter.load.Sign() == 0 || voter.budget == 0 {
			continue
		}

		var distribution []StakedEdge
		budget := new(big.Int).SetUint64(voter.budget)
		assigned := uint64(0)
		for _, edge := range voter.edges {
			if !edge.candidate.elected || edge.load == nil {
				continue
			}
			// weight = budget * edgeLoad / voterLoad
			share := new(big.Rat).Mul(edge.load, new(big.Rat).SetInt(budget))
			share.Quo(share, voter.load)
			weight := new(big.Int).Quo(share.Num(), share.Denom()).Uint64()
			assigned += weight
			distribution = append(distribution, StakedEdge{
				Target: edge.candidate.id,
				Weight: weight,
			})
		}
		if len(distribution) == 0 {
			continue
		}
		distribution[len(distribution)-1].Weight += voter.budget - assigned

		assignments = append(assignments, Assignment{
			Who:          voter.who,
			Budget:       voter.budget,
			Distribution: distribution,
		})
	}
	return assignments
}

// SupportTotals sums the backing each candidate receives across all
// assignments, with overflow checked addition.
func SupportTotals(assignments []Assignment) (map[string]uint64, error) {
	totals := make(map[string]uint64)
	for _, assignment := range assignments {
		for _, edge := range assignment.Distribution {
			sum, carry := bits.Add64(totals[edge.Target], edge.Weight, 0)
			if carry != 0 {
				return nil, fmt.Errorf("%w: candidate %x",
					ErrWeightOverflow, edge.Target)
			}
			totals[edge.Target] = sum
		}
	}
	return totals, nil
}
