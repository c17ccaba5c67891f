// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package election implements the offline election pipeline: snapshot
// acquisition, weight normalization, running the Phragmén solver with
// optional balancing and reduction, and deterministic result export.
//
// A pipeline run is a single self contained batch computation over an
// immutable Snapshot; nothing is shared between runs.
package election

import (
	"fmt"
	"math/big"

	"github.com/ChainSafe/offline-election/config"
	"github.com/ChainSafe/offline-election/lib/common"
	"github.com/ChainSafe/offline-election/lib/crypto/ss58"
)

// AccountIDLength is the byte length of a substrate account id.
const AccountIDLength = 32

// AccountID is a 32 byte substrate account identifier.
type AccountID [AccountIDLength]byte

// NewAccountID casts a byte slice to an AccountID.
func NewAccountID(in []byte) (id AccountID) {
	copy(id[:], in)
	return id
}

// ParseAccountID parses either a 0x prefixed hex public key or an
// SS58 address.
func ParseAccountID(in string) (AccountID, error) {
	if len(in) > 1 && (in[0:2] == "0x" || in[0:2] == "0X") {
		b, err := common.HexToBytes(in)
		if err != nil {
			return AccountID{}, err
		}
		if len(b) != 32 {
			return AccountID{}, fmt.Errorf("account id must be 32 bytes, got %d", len(b))
		}
		return NewAccountID(b), nil
	}

	pub, _, err := ss58.Decode(in)
	if err != nil {
		return AccountID{}, err
	}
	return NewAccountID(pub), nil
}

// String returns the 0x prefixed hex representation of the account id.
func (id AccountID) String() string {
	return common.BytesToHex(id[:])
}

// Pretty returns the SS58 address of the account under the given
// network's address format.
func (id AccountID) Pretty(network config.Network) string {
	address, err := ss58.Encode(id[:], network.SS58Prefix)
	if err != nil {
		// prefixes in the registry are always encodable
		return id.String()
	}
	return address
}

// Candidate is an identity eligible for election. For the staking
// election SelfStake is the validator's own bonded balance, which
// implicitly backs the candidate; council candidates have no implicit
// self vote and carry zero.
type Candidate struct {
	ID        AccountID
	SelfStake *big.Int

	// Weight is the SelfStake converted to the solver's vote weight
	// domain; zero until the snapshot is normalized.
	Weight uint64
}

// Voter is an identity backing one or more candidates with its whole
// stake.
type Voter struct {
	ID      AccountID
	Stake   *big.Int
	Targets []AccountID

	// Weight is the Stake converted to the solver's vote weight
	// domain; zero until the snapshot is normalized.
	Weight uint64
}

// Snapshot is the immutable election input graph captured at one
// block. Every voter target references a member of Candidates.
type Snapshot struct {
	Block      common.Hash
	Candidates []Candidate
	Voters     []Voter
}

// Backing is one voter's weighted contribution to an elected
// candidate.
type Backing struct {
	Voter  AccountID
	Weight uint64
}

// Support is the total backing of one elected candidate together with
// the contributing edges, ordered by voter id.
type Support struct {
	Total   uint64
	Backers []Backing
}

// Result is the outcome of one election run. Winners are in election
// order; Supports holds the backing graph after balancing and, if
// requested, reduction.
type Result struct {
	Block    common.Hash
	Winners  []AccountID
	Supports map[AccountID]*Support
}
