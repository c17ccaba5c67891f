// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResult() *Result {
	winnerA := accountID(0x0a)
	winnerB := accountID(0x0b)
	return &Result{
		Block:   testBlock,
		Winners: []AccountID{winnerB, winnerA}, // election order, B first
		Supports: map[AccountID]*Support{
			winnerA: {Total: 60, Backers: []Backing{
				{Voter: accountID(0x01), Weight: 60},
			}},
			winnerB: {Total: 90, Backers: []Backing{
				{Voter: accountID(0x01), Weight: 40},
				{Voter: accountID(0x02), Weight: 50},
			}},
		},
	}
}

func TestEncodeResult_deterministic(t *testing.T) {
	network := testNetwork(t)

	first, err := EncodeResult(testResult(), network)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := EncodeResult(testResult(), network)
		require.NoError(t, err)
		assert.Equal(t, first, again, "result encoding must be byte stable")
	}
}

func TestEncodeResult_sortedByIdentity(t *testing.T) {
	network := testNetwork(t)
	encoded, err := EncodeResult(testResult(), network)
	require.NoError(t, err)

	var document struct {
		Winners  []string `json:"winners"`
		Supports map[string][]struct {
			Voter  string `json:"voter"`
			Weight uint64 `json:"weight"`
		} `json:"supports"`
	}
	require.NoError(t, json.Unmarshal(encoded, &document))

	// winners come sorted by candidate identity, not election order
	require.Len(t, document.Winners, 2)
	assert.Equal(t, accountID(0x0a).Pretty(network), document.Winners[0])
	assert.Equal(t, accountID(0x0b).Pretty(network), document.Winners[1])

	backers := document.Supports[document.Winners[1]]
	require.Len(t, backers, 2)
	assert.Equal(t, accountID(0x01).Pretty(network), backers[0].Voter)
	assert.Equal(t, uint64(40), backers[0].Weight)
}

func TestWriteResultFile(t *testing.T) {
	network := testNetwork(t)
	path := filepath.Join(t.TempDir(), "result.json")

	require.NoError(t, WriteResultFile(path, testResult(), network))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	expected, err := EncodeResult(testResult(), network)
	require.NoError(t, err)
	assert.Equal(t, expected, data)
}

func TestWriteResultFile_badPath(t *testing.T) {
	network := testNetwork(t)
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "result.json")

	err := WriteResultFile(path, testResult(), network)
	assert.ErrorIs(t, err, ErrWrite)
}

func TestSummarize(t *testing.T) {
	network := testNetwork(t)

	out := new(bytes.Buffer)
	Summarize(out, testResult(), network, false)
	terse := out.String()
	assert.Contains(t, terse, accountID(0x0a).Pretty(network))
	assert.NotContains(t, terse, accountID(0x01).Pretty(network),
		"backers are only listed in verbose mode")

	out.Reset()
	Summarize(out, testResult(), network, true)
	assert.Contains(t, out.String(), accountID(0x01).Pretty(network))
}
