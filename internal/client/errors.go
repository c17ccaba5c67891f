// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package client

import "errors"

var (
	// ErrConnect is returned when the websocket endpoint cannot be
	// reached.
	ErrConnect = errors.New("cannot connect to node")
	// ErrUnsupportedMetadata is returned for runtimes older than
	// metadata v14.
	ErrUnsupportedMetadata = errors.New("unsupported metadata version")
	// ErrPalletNotFound is returned when no known elections pallet
	// exists in the runtime.
	ErrPalletNotFound = errors.New("pallet not found in metadata")
	// ErrConstantNotFound is returned when a pallet constant is
	// missing from the metadata.
	ErrConstantNotFound = errors.New("constant not found in metadata")

	errShortStorageKey = errors.New("storage key too short for account id")
)
