// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexToHash(t *testing.T) {
	testCases := map[string]struct {
		in       string
		expected string
		errMsg   string
	}{
		"valid": {
			in:       "0x580d77a9136035a0bc3c3cd86286172f7f81291164c5914266073a30466fba21",
			expected: "0x580d77a9136035a0bc3c3cd86286172f7f81291164c5914266073a30466fba21",
		},
		"no prefix": {
			in:       "580d77a9136035a0bc3c3cd86286172f7f81291164c5914266073a30466fba21",
			expected: "0x580d77a9136035a0bc3c3cd86286172f7f81291164c5914266073a30466fba21",
		},
		"too short": {
			in:     "0x580d77a9",
			errMsg: "invalid hash length: 4",
		},
		"odd length": {
			in:     "0x580",
			errMsg: "cannot decode an odd length string",
		},
	}

	for name, test := range testCases {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			h, err := HexToHash(test.in)
			if test.errMsg != "" {
				assert.EqualError(t, err, test.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, h.String())
		})
	}
}

func TestHash_Short(t *testing.T) {
	h := MustHexToHash("0x580d77a9136035a0bc3c3cd86286172f7f81291164c5914266073a30466fba21")
	assert.Equal(t, "0x580d77a9...466fba21", h.Short())
	assert.False(t, h.IsEmpty())
	assert.True(t, Hash{}.IsEmpty())
}
