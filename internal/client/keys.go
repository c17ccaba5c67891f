// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package client

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"

	"github.com/ChainSafe/offline-election/lib/common"
	"github.com/ChainSafe/offline-election/lib/election"
)

// mapPrefix returns the storage prefix of a map item,
// twox128(pallet) ++ twox128(item). Entries under the map are
// enumerated with state_getKeys on this prefix.
func mapPrefix(pallet, item string) types.StorageKey {
	prefix := common.MustTwox128Hash([]byte(pallet))
	return types.StorageKey(append(prefix, common.MustTwox128Hash([]byte(item))...))
}

// accountFromKey extracts the account id from a storage map key. All
// maps read here are keyed by AccountId with a reversible hasher, so
// the id is the trailing 32 bytes of the key.
func accountFromKey(key types.StorageKey) (election.AccountID, error) {
	if len(key) < election.AccountIDLength {
		return election.AccountID{}, fmt.Errorf("%w: 0x%x", errShortStorageKey, []byte(key))
	}
	return election.NewAccountID(key[len(key)-election.AccountIDLength:]), nil
}
