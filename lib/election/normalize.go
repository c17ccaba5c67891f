// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"math"
	"math/big"

	"github.com/ChainSafe/offline-election/config"
)

var maxWeight = new(big.Int).SetUint64(math.MaxUint64)

// NormalizeSnapshot converts every native balance in the snapshot
// into the solver's vote weight domain by the network's decimal
// scaling, and returns the weighted copy. The input is not modified.
//
// The conversion is monotonic: a larger balance never maps to a
// smaller weight. Weights exceeding the uint64 domain are clamped to
// its maximum; each clamp is logged as a precision loss and counted
// in the return value, but the run continues.
func NormalizeSnapshot(snapshot *Snapshot, network config.Network) (
	normalized *Snapshot, clamped int) {
	normalized = &Snapshot{
		Block:      snapshot.Block,
		Candidates: make([]Candidate, len(snapshot.Candidates)),
		Voters:     make([]Voter, len(snapshot.Voters)),
	}

	for i, candidate := range snapshot.Candidates {
		weight, lossy := NormalizeWeight(candidate.SelfStake, network)
		if lossy {
			logger.Warn("self stake weight clamped, precision lost",
				"candidate", candidate.ID, "stake", candidate.SelfStake)
			clamped++
		}
		normalized.Candidates[i] = Candidate{
			ID:        candidate.ID,
			SelfStake: candidate.SelfStake,
			Weight:    weight,
		}
	}

	for i, voter := range snapshot.Voters {
		weight, lossy := NormalizeWeight(voter.Stake, network)
		if lossy {
			logger.Warn("voter stake weight clamped, precision lost",
				"voter", voter.ID, "stake", voter.Stake)
			clamped++
		}
		normalized.Voters[i] = Voter{
			ID:      voter.ID,
			Stake:   voter.Stake,
			Targets: voter.Targets,
			Weight:  weight,
		}
	}

	return normalized, clamped
}

// NormalizeWeight converts one planck balance into a vote weight:
// the balance divided by the network's plancks-per-token. The second
// return reports whether the weight was clamped to the uint64
// maximum.
func NormalizeWeight(stake *big.Int, network config.Network) (
	weight uint64, clamped bool) {
	if stake == nil || stake.Sign() <= 0 {
		return 0, false
	}
	scaled := new(big.Int).Quo(stake, new(big.Int).SetUint64(network.DecimalPoints))
	if scaled.Cmp(maxWeight) > 0 {
		return math.MaxUint64, true
	}
	return scaled.Uint64(), false
}
