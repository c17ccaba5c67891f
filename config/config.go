// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package config holds the run configuration of the offline election
// tool: the node to scrape, the block to pin reads to, and the
// address format and token denomination of the target network.
package config

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// DefaultURI is the node websocket endpoint used when --uri is not given.
const DefaultURI = "ws://localhost:9944"

var ErrUnknownNetwork = errors.New("unknown network")

// Config is the fully resolved run configuration shared by all
// subcommands. It is threaded explicitly through the pipeline rather
// than held in process-wide state, so independent elections for
// different networks can run in one process.
type Config struct {
	// URI is the websocket endpoint of the node to scrape.
	URI string `mapstructure:"uri"`
	// At is the 0x prefixed block hash to pin all storage reads to.
	// Empty means the current chain head.
	At string `mapstructure:"at"`
	// Network is the address format name. Empty means resolve from
	// the runtime spec name at startup.
	Network string `mapstructure:"network"`
	// Verbosity is the occurrence count of -v.
	Verbosity int `mapstructure:"verbosity"`
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() *Config {
	return &Config{
		URI: DefaultURI,
	}
}

// Network describes the address format and token denomination of a
// substrate chain.
type Network struct {
	// Name is the network identifier, e.g. "polkadot".
	Name string
	// Token is the display symbol, e.g. "DOT".
	Token string
	// DecimalPoints is the number of plancks per token, e.g. 1e10
	// for polkadot. It is also the divisor turning balances into
	// solver vote weights.
	DecimalPoints uint64
	// SS58Prefix is the network's address format prefix.
	SS58Prefix uint8
}

var networks = []Network{
	{Name: "polkadot", Token: "DOT", DecimalPoints: 10_000_000_000, SS58Prefix: 0},
	{Name: "kusama", Token: "KSM", DecimalPoints: 1_000_000_000_000, SS58Prefix: 2},
	{Name: "westend", Token: "WND", DecimalPoints: 1_000_000_000_000, SS58Prefix: 42},
	{Name: "substrate", Token: "UNIT", DecimalPoints: 1_000_000_000_000, SS58Prefix: 42},
}

// NetworkByName returns the network with the given name, or
// ErrUnknownNetwork. Matching is case insensitive.
func NetworkByName(name string) (Network, error) {
	for _, network := range networks {
		if strings.EqualFold(name, network.Name) {
			return network, nil
		}
	}
	return Network{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
}

// NetworkForSpec maps a runtime spec name to a network, falling back
// to the generic substrate format when the spec is not recognised.
func NetworkForSpec(spec string) Network {
	network, err := NetworkByName(spec)
	if err != nil {
		network, _ = NetworkByName("substrate")
	}
	return network
}

// KnownNetworks returns the names of all supported networks.
func KnownNetworks() []string {
	names := make([]string, len(networks))
	for i, network := range networks {
		names[i] = network.Name
	}
	return names
}

// DisplayBalance renders a planck balance as a human readable token
// amount, e.g. "123.4567 DOT". Presentation only; never used in
// weight arithmetic.
func (n Network) DisplayBalance(planck *big.Int) string {
	if planck == nil {
		return "0.0000 " + n.Token
	}
	points := new(big.Int).SetUint64(n.DecimalPoints)
	whole, remainder := new(big.Int).QuoRem(planck, points, new(big.Int))
	// four decimal places
	frac := new(big.Int).Mul(remainder, big.NewInt(10_000))
	frac.Quo(frac, points)
	return fmt.Sprintf("%s.%04d %s", whole.String(), frac.Uint64(), n.Token)
}
