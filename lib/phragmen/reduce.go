// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package phragmen

import "sort"

// Reduce removes redundant edges from the bipartite voter-candidate
// support graph. Whenever the graph contains a cycle, shifting the
// minimum weight around it zeroes at least one edge while leaving
// every voter's committed total and every candidate's backing
// unchanged. The result is a forest, so applying Reduce twice is the
// same as applying it once.
//
// Assignments are modified in place; zero weight edges are dropped.
// The number of removed edges is returned.
func Reduce(assignments []Assignment) (removed int) {
	for {
		graph := buildReduceGraph(assignments)
		cycle := graph.findCycle()
		if cycle == nil {
			break
		}
		removed += shiftCycle(cycle)
	}
	pruneZeroEdges(assignments)
	return removed
}

// reduceEdge points back into an assignment's distribution so cycle
// shifts mutate the real weights.
type reduceEdge struct {
	voter  string
	weight *uint64
}

type reduceGraph struct {
	// adjacency from every node to its incident edges, where voter
	// nodes are prefixed "v " and candidate nodes "c " to keep the
	// two id spaces apart
	nodes map[string][]reduceHalfEdge
	order []string
}

type reduceHalfEdge struct {
	peer string
	edge *reduceEdge
}

func buildReduceGraph(assignments []Assignment) *reduceGraph {
	graph := &reduceGraph{nodes: make(map[string][]reduceHalfEdge)}
	for i := range assignments {
		assignment := &assignments[i]
		voterNode := "v " + assignment.Who
		for j := range assignment.Distribution {
			distribution := &assignment.Distribution[j]
			if distribution.Weight == 0 {
				continue
			}
			candidateNode := "c " + distribution.Target
			edge := &reduceEdge{
				voter:  assignment.Who,
				weight: &distribution.Weight,
			}
			graph.nodes[voterNode] = append(graph.nodes[voterNode],
				reduceHalfEdge{peer: candidateNode, edge: edge})
			graph.nodes[candidateNode] = append(graph.nodes[candidateNode],
				reduceHalfEdge{peer: voterNode, edge: edge})
		}
	}
	for node, halves := range graph.nodes {
		sort.Slice(halves, func(i, j int) bool {
			return halves[i].peer < halves[j].peer
		})
		graph.order = append(graph.order, node)
	}
	sort.Strings(graph.order)
	return graph
}

// findCycle returns the edges of one cycle in the graph, or nil if
// the graph is a forest. Traversal order is deterministic.
func (g *reduceGraph) findCycle() []*reduceEdge {
	visited := make(map[string]bool, len(g.order))

	type frame struct {
		node string
		via  *reduceEdge
		next int
	}

	for _, start := range g.order {
		if visited[start] {
			continue
		}
		stack := []frame{{node: start}}
		onStack := map[string]int{start: 0}
		visited[start] = true

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next >= len(g.nodes[top.node]) {
				delete(onStack, top.node)
				stack = stack[:len(stack)-1]
				continue
			}
			half := g.nodes[top.node][top.next]
			top.next++
			if half.edge == top.via {
				continue
			}
			if depth, ok := onStack[half.peer]; ok {
				// back edge: the cycle is everything on the
				// stack below here plus the closing edge
				cycle := []*reduceEdge{half.edge}
				for i := len(stack) - 1; i > depth; i-- {
					cycle = append(cycle, stack[i].via)
				}
				return cycle
			}
			if visited[half.peer] {
				continue
			}
			visited[half.peer] = true
			onStack[half.peer] = len(stack)
			stack = append(stack, frame{node: half.peer, via: half.edge})
		}
	}
	return nil
}

// shiftCycle moves the minimum alternating weight around the cycle.
// Alternate edges share a voter (or a candidate) node, so adding to
// one class and subtracting from the other keeps all per-voter and
// per-candidate totals intact while zeroing the minimum edge.
func shiftCycle(cycle []*reduceEdge) (removed int) {
	minIndex := 0
	for i, edge := range cycle {
		if *edge.weight < *cycle[minIndex].weight {
			minIndex = i
		}
	}
	delta := *cycle[minIndex].weight

	for i, edge := range cycle {
		if i%2 == minIndex%2 {
			*edge.weight -= delta
			if *edge.weight == 0 {
				removed++
			}
		} else {
			*edge.weight += delta
		}
	}
	return removed
}

func pruneZeroEdges(assignments []Assignment) {
	for i := range assignments {
		assignment := &assignments[i]
		kept := assignment.Distribution[:0]
		for _, edge := range assignment.Distribution {
			if edge.Weight > 0 {
				kept = append(kept, edge)
			}
		}
		assignment.Distribution = kept
	}
}
