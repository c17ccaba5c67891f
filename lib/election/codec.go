// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ChainSafe/offline-election/config"
	"github.com/ChainSafe/offline-election/lib/common"
)

// snapshotDocument is the persisted JSON form of a Snapshot. Account
// ids are SS58 addresses on output; hex public keys are also accepted
// on input. Stakes are decimal planck strings since they exceed 64
// bits on real networks.
type snapshotDocument struct {
	Block      string              `json:"block"`
	Candidates []candidateDocument `json:"candidates"`
	Voters     []voterDocument     `json:"voters"`
}

type candidateDocument struct {
	ID        string `json:"id"`
	SelfStake string `json:"self_stake,omitempty"`
}

type voterDocument struct {
	ID      string   `json:"id"`
	Stake   string   `json:"stake"`
	Targets []string `json:"targets"`
}

// EncodeSnapshot serializes a snapshot to its canonical JSON document.
func EncodeSnapshot(snapshot *Snapshot, network config.Network) ([]byte, error) {
	document := snapshotDocument{
		Block:      snapshot.Block.String(),
		Candidates: make([]candidateDocument, len(snapshot.Candidates)),
		Voters:     make([]voterDocument, len(snapshot.Voters)),
	}
	for i, candidate := range snapshot.Candidates {
		document.Candidates[i] = candidateDocument{
			ID:        candidate.ID.Pretty(network),
			SelfStake: stakeString(candidate.SelfStake),
		}
	}
	for i, voter := range snapshot.Voters {
		targets := make([]string, len(voter.Targets))
		for j, target := range voter.Targets {
			targets[j] = target.Pretty(network)
		}
		document.Voters[i] = voterDocument{
			ID:      voter.ID.Pretty(network),
			Stake:   stakeString(voter.Stake),
			Targets: targets,
		}
	}
	return json.MarshalIndent(document, "", "  ")
}

// DecodeSnapshot parses a snapshot document and validates its graph
// invariants.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var document snapshotDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSnapshot, err)
	}
	if document.Candidates == nil {
		return nil, fmt.Errorf("%w: missing candidate list", ErrInvalidSnapshot)
	}

	snapshot := &Snapshot{}
	if document.Block != "" {
		block, err := common.HexToHash(document.Block)
		if err != nil {
			return nil, fmt.Errorf("%w: block: %s", ErrInvalidSnapshot, err)
		}
		snapshot.Block = block
	}

	for _, candidate := range document.Candidates {
		id, err := ParseAccountID(candidate.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: candidate id %q: %s",
				ErrInvalidSnapshot, candidate.ID, err)
		}
		selfStake, err := parseStake(candidate.SelfStake)
		if err != nil {
			return nil, fmt.Errorf("%w: self stake of %q: %s",
				ErrInvalidSnapshot, candidate.ID, err)
		}
		snapshot.Candidates = append(snapshot.Candidates, Candidate{
			ID:        id,
			SelfStake: selfStake,
		})
	}

	for _, voter := range document.Voters {
		id, err := ParseAccountID(voter.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: voter id %q: %s",
				ErrInvalidSnapshot, voter.ID, err)
		}
		stake, err := parseStake(voter.Stake)
		if err != nil {
			return nil, fmt.Errorf("%w: stake of %q: %s",
				ErrInvalidSnapshot, voter.ID, err)
		}
		targets := make([]AccountID, len(voter.Targets))
		for i, target := range voter.Targets {
			targets[i], err = ParseAccountID(target)
			if err != nil {
				return nil, fmt.Errorf("%w: target %q of voter %q: %s",
					ErrInvalidSnapshot, target, voter.ID, err)
			}
		}
		snapshot.Voters = append(snapshot.Voters, Voter{
			ID:      id,
			Stake:   stake,
			Targets: targets,
		})
	}

	if err := validateSnapshot(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// LoadSnapshotFile reads a snapshot document from disk, bypassing the
// live chain fetch.
func LoadSnapshotFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSnapshot, err)
	}
	return DecodeSnapshot(data)
}

// validateSnapshot checks the input graph invariants: unique
// candidate and voter ids, and every edge pointing at a known
// candidate.
func validateSnapshot(snapshot *Snapshot) error {
	candidateSet := make(map[AccountID]struct{}, len(snapshot.Candidates))
	for _, candidate := range snapshot.Candidates {
		if _, ok := candidateSet[candidate.ID]; ok {
			return fmt.Errorf("%w: duplicate candidate %s",
				ErrInvalidSnapshot, candidate.ID)
		}
		candidateSet[candidate.ID] = struct{}{}
	}

	voterSet := make(map[AccountID]struct{}, len(snapshot.Voters))
	for _, voter := range snapshot.Voters {
		if _, ok := voterSet[voter.ID]; ok {
			return fmt.Errorf("%w: duplicate voter %s", ErrInvalidSnapshot, voter.ID)
		}
		voterSet[voter.ID] = struct{}{}
		for _, target := range voter.Targets {
			if _, ok := candidateSet[target]; !ok {
				return fmt.Errorf("%w: voter %s targets unknown candidate %s",
					ErrInvalidSnapshot, voter.ID, target)
			}
		}
	}
	return nil
}

func stakeString(stake *big.Int) string {
	if stake == nil {
		return ""
	}
	return stake.String()
}

func parseStake(in string) (*big.Int, error) {
	if in == "" {
		return nil, nil
	}
	stake, ok := new(big.Int).SetString(in, 10)
	if !ok {
		return nil, fmt.Errorf("not a decimal integer: %q", in)
	}
	if stake.Sign() < 0 {
		return nil, fmt.Errorf("negative stake: %q", in)
	}
	return stake, nil
}
