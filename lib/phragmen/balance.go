// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package phragmen

import (
	"math/big"
	"sort"
)

// Balance runs the given number of balancing rounds over the
// assignments in place. Each round visits every voter in id order and
// redistributes that voter's budget across its elected targets so
// their backings level out (water filling), which never increases the
// sum of squared candidate backings.
//
// The number of rounds is honoured exactly; callers pass 0 for plain
// sequential Phragmén output.
func Balance(assignments []Assignment, rounds int) {
	if rounds <= 0 || len(assignments) == 0 {
		return
	}

	sorted := make([]*Assignment, len(assignments))
	for i := range assignments {
		sorted[i] = &assignments[i]
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Who < sorted[j].Who
	})

	backings := backingTotals(assignments)
	for round := 0; round < rounds; round++ {
		for _, assignment := range sorted {
			balanceVoter(assignment, backings)
		}
	}
}

// balanceVoter redistributes one voter's budget across its targets,
// updating the shared backing totals.
func balanceVoter(assignment *Assignment, backings map[string]*big.Int) {
	edges := assignment.Distribution
	if len(edges) < 2 {
		return
	}

	// backing of each target with this voter's contribution removed
	type waterEdge struct {
		index int
		base  *big.Int
	}
	waterEdges := make([]waterEdge, len(edges))
	for i, edge := range edges {
		base := new(big.Int).Sub(
			backings[edge.Target], new(big.Int).SetUint64(edge.Weight))
		waterEdges[i] = waterEdge{index: i, base: base}
	}
	sort.Slice(waterEdges, func(i, j int) bool {
		cmp := waterEdges[i].base.Cmp(waterEdges[j].base)
		if cmp != 0 {
			return cmp < 0
		}
		return edges[waterEdges[i].index].Target < edges[waterEdges[j].index].Target
	})

	// find how many of the least backed targets to fill to a common
	// level with this voter's budget
	budget := new(big.Int).SetUint64(assignment.Budget)
	cumulative := new(big.Int).Set(budget)
	fill := 1
	cumulative.Add(cumulative, waterEdges[0].base)
	for fill < len(waterEdges) {
		// level = cumulative / fill; grow while level > next base
		next := new(big.Int).Mul(waterEdges[fill].base, big.NewInt(int64(fill)))
		if cumulative.Cmp(next) <= 0 {
			break
		}
		cumulative.Add(cumulative, waterEdges[fill].base)
		fill++
	}
	level := new(big.Int).Quo(cumulative, big.NewInt(int64(fill)))

	assigned := uint64(0)
	for i, waterEdge := range waterEdges {
		edge := &edges[waterEdge.index]
		if i >= fill {
			edge.Weight = 0
			continue
		}
		edge.Weight = new(big.Int).Sub(level, waterEdge.base).Uint64()
		assigned += edge.Weight
	}
	// division remainder goes to the least backed target
	edges[waterEdges[0].index].Weight += assignment.Budget - assigned

	for _, waterEdge := range waterEdges {
		backing := backings[edges[waterEdge.index].Target]
		backing.Set(waterEdge.base)
		backing.Add(backing,
			new(big.Int).SetUint64(edges[waterEdge.index].Weight))
	}
}

func backingTotals(assignments []Assignment) map[string]*big.Int {
	backings := make(map[string]*big.Int)
	for _, assignment := range assignments {
		for _, edge := range assignment.Distribution {
			backing, ok := backings[edge.Target]
			if !ok {
				backing = new(big.Int)
				backings[edge.Target] = backing
			}
			backing.Add(backing, new(big.Int).SetUint64(edge.Weight))
		}
	}
	return backings
}

// sumSquaredBackings is the aggregate imbalance metric used by tests:
// the sum over candidates of the squared total backing.
func sumSquaredBackings(assignments []Assignment) *big.Int {
	sum := new(big.Int)
	for _, backing := range backingTotals(assignments) {
		sum.Add(sum, new(big.Int).Mul(backing, backing))
	}
	return sum
}
