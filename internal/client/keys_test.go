// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package client

import (
	"math/big"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChainSafe/offline-election/lib/common"
	"github.com/ChainSafe/offline-election/lib/election"
)

func TestMapPrefix(t *testing.T) {
	t.Parallel()

	prefix := mapPrefix("System", "Account")
	require.Len(t, []byte(prefix), 32)
	// well known System.Account prefix
	assert.Equal(t,
		"0x26aa394eea5630e07c48ae0c9558cef7b99d880ec681799c0cf30e8886371da9",
		common.BytesToHex(prefix))
}

func TestAccountFromKey(t *testing.T) {
	t.Parallel()

	var who election.AccountID
	for i := range who {
		who[i] = byte(i)
	}

	// prefix ++ twox64(id) ++ id, the twox64concat layout used by the
	// staking maps
	key := append([]byte(nil), mapPrefix("Staking", "Nominators")...)
	key = append(key, make([]byte, 8)...)
	key = append(key, who[:]...)

	got, err := accountFromKey(types.StorageKey(key))
	require.NoError(t, err)
	assert.Equal(t, who, got)

	_, err = accountFromKey(types.StorageKey{0x01, 0x02})
	assert.ErrorIs(t, err, errShortStorageKey)
}

func TestStorageConversions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, big.NewInt(0), u128ToBig(types.U128{}))
	assert.Equal(t, big.NewInt(42), u128ToBig(types.NewU128(*big.NewInt(42))))

	compact := types.NewUCompact(big.NewInt(1_000_000))
	assert.Equal(t, big.NewInt(1_000_000), compactToBig(compact))

	ids := accountIDs([]types.AccountID{{0x01}, {0x02}})
	require.Len(t, ids, 2)
	assert.Equal(t, election.AccountID{0x01}, ids[0])
}
