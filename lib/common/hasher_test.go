// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwox128Hash(t *testing.T) {
	t.Parallel()

	// well known Substrate storage prefixes
	testCases := map[string]struct {
		input    string
		expected string
	}{
		"system pallet": {
			input:    "System",
			expected: "0x26aa394eea5630e07c48ae0c9558cef7",
		},
		"sudo pallet": {
			input:    "Sudo",
			expected: "0x5c0d1176a568c1f92944340dbfed9e9c",
		},
		"key item": {
			input:    "Key",
			expected: "0x530ebca703c85910e7164cb7d1c9e47b",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			hash, err := Twox128Hash([]byte(testCase.input))
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, BytesToHex(hash))
		})
	}
}

func TestMustTwox128Hash(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MustTwox128Hash([]byte("Key")),
		MustTwox128Hash([]byte("Key")))
	assert.Len(t, MustTwox128Hash(nil), 16)
}
