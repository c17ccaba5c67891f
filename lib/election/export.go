// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/qdm12/gotree"

	"github.com/ChainSafe/offline-election/config"
)

// resultDocument is the persisted JSON form of a Result: winners
// ordered by candidate id, and for each winner its backers ordered by
// voter id, so repeated runs produce byte identical, diffable output.
type resultDocument struct {
	Block    string                      `json:"block"`
	Winners  []string                    `json:"winners"`
	Supports map[string][]backerDocument `json:"supports"`
}

type backerDocument struct {
	Voter  string `json:"voter"`
	Weight uint64 `json:"weight"`
}

// EncodeResult serializes an election result to its canonical JSON
// document.
func EncodeResult(result *Result, network config.Network) ([]byte, error) {
	winners := make([]AccountID, len(result.Winners))
	copy(winners, result.Winners)
	sort.Slice(winners, func(i, j int) bool {
		return lessID(winners[i], winners[j])
	})

	document := resultDocument{
		Block:    result.Block.String(),
		Winners:  make([]string, len(winners)),
		Supports: make(map[string][]backerDocument, len(winners)),
	}
	for i, winner := range winners {
		address := winner.Pretty(network)
		document.Winners[i] = address

		support := result.Supports[winner]
		backers := make([]backerDocument, 0, len(support.Backers))
		for _, backing := range support.Backers {
			backers = append(backers, backerDocument{
				Voter:  backing.Voter.Pretty(network),
				Weight: backing.Weight,
			})
		}
		document.Supports[address] = backers
	}

	// map keys are emitted sorted by encoding/json, so the document
	// layout is stable
	return json.MarshalIndent(document, "", "  ")
}

// WriteResultFile exports the result document to the given path.
func WriteResultFile(path string, result *Result, network config.Network) error {
	data, err := EncodeResult(result, network)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrWrite, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %s", ErrWrite, err)
	}
	logger.Info("result exported", "path", path, "bytes", len(data))
	return nil
}

// Summarize renders a human readable report of the result. With
// verbose set, every winner's backers are listed. Presentation only:
// the result is read, never changed.
func Summarize(w io.Writer, result *Result, network config.Network, verbose bool) {
	title := color.New(color.FgCyan, color.Bold)
	_, _ = title.Fprintf(w, "%d winners at block %s\n",
		len(result.Winners), result.Block.Short())

	tree := gotree.New(fmt.Sprintf("winners (%s)", network.Name))
	for i, winner := range result.Winners {
		support := result.Supports[winner]
		node := tree.Appendf("%2d. %s  backing %s", i+1,
			winner.Pretty(network), displayWeight(support.Total, network))
		if !verbose {
			continue
		}
		for _, backing := range support.Backers {
			node.Appendf("%s  %s", backing.Voter.Pretty(network),
				displayWeight(backing.Weight, network))
		}
	}
	_, _ = fmt.Fprintln(w, tree.String())
}

// displayWeight renders a vote weight as an approximate token
// amount by undoing the normalizer's decimal scaling.
func displayWeight(weight uint64, network config.Network) string {
	planck := new(big.Int).Mul(
		new(big.Int).SetUint64(weight),
		new(big.Int).SetUint64(network.DecimalPoints))
	return network.DisplayBalance(planck)
}
