// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import "errors"

var (
	// ErrDataFetch is returned when the remote chain source is
	// unreachable, times out, or returns malformed storage. A run
	// never produces partial output after it.
	ErrDataFetch = errors.New("failed to fetch chain data")

	// ErrInsufficientCandidates is returned when fewer eligible
	// candidates exist than requested winners.
	ErrInsufficientCandidates = errors.New("not enough eligible candidates")

	// ErrInvalidSnapshot is returned for snapshot documents that
	// violate the input graph invariants.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrInternalInvariant is returned when balancing or reduction
	// produce totals inconsistent with their input. It indicates a
	// bug, not a user recoverable condition.
	ErrInternalInvariant = errors.New("internal invariant violation")

	// ErrWrite is returned when the output file cannot be written.
	ErrWrite = errors.New("failed to write output")

	errNegativeIterations = errors.New("balancing iterations cannot be negative")
	errNoWinnersRequested = errors.New("winner count must be positive")
)
