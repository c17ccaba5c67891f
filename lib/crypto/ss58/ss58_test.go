// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package ss58

import (
	"testing"

	"github.com/ChainSafe/offline-election/lib/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Alice's well known sr25519 development key.
const alicePubHex = "0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"

func TestEncode(t *testing.T) {
	pub, err := common.HexToBytes(alicePubHex)
	require.NoError(t, err)

	address, err := Encode(pub, 42)
	require.NoError(t, err)
	assert.Equal(t, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", address)
}

func TestEncode_errors(t *testing.T) {
	_, err := Encode([]byte{1, 2, 3}, 42)
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	pub, err := common.HexToBytes(alicePubHex)
	require.NoError(t, err)
	_, err = Encode(pub, 64)
	assert.ErrorIs(t, err, ErrInvalidPrefix)
}

func TestDecode_roundtrip(t *testing.T) {
	pub, err := common.HexToBytes(alicePubHex)
	require.NoError(t, err)

	for _, prefix := range []uint8{0, 2, 42} {
		address, err := Encode(pub, prefix)
		require.NoError(t, err)

		decoded, decodedPrefix, err := Decode(address)
		require.NoError(t, err)
		assert.Equal(t, pub, decoded)
		assert.Equal(t, prefix, decodedPrefix)
	}
}

func TestDecode_badChecksum(t *testing.T) {
	pub, err := common.HexToBytes(alicePubHex)
	require.NoError(t, err)
	address, err := Encode(pub, 42)
	require.NoError(t, err)

	// flip a character in the body of the address
	corrupted := []byte(address)
	if corrupted[10] == '2' {
		corrupted[10] = '3'
	} else {
		corrupted[10] = '2'
	}

	_, _, err = Decode(string(corrupted))
	assert.Error(t, err)
}
