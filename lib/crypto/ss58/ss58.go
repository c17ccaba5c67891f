// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package ss58 implements the SS58 account address format used by
// substrate chains. Only the single byte network prefixes (0..63)
// used by polkadot, kusama and generic substrate chains are supported.
package ss58

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/blake2b"
)

// checksumPrefix is hashed together with the payload to form the
// address checksum.
var checksumPrefix = []byte("SS58PRE")

var (
	ErrInvalidPrefix    = errors.New("network prefix out of range")
	ErrInvalidChecksum  = errors.New("invalid address checksum")
	ErrInvalidLength    = errors.New("invalid address length")
	ErrInvalidPublicKey = errors.New("public key must be 32 bytes")
)

// Encode returns the SS58 address for the given 32 byte account id
// under the given network prefix.
func Encode(pubkey []byte, prefix uint8) (string, error) {
	if len(pubkey) != 32 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidPublicKey, len(pubkey))
	}
	if prefix > 63 {
		return "", fmt.Errorf("%w: %d", ErrInvalidPrefix, prefix)
	}

	payload := make([]byte, 0, 1+32+2)
	payload = append(payload, prefix)
	payload = append(payload, pubkey...)
	payload = append(payload, checksum(payload)...)
	return base58.Encode(payload), nil
}

// Decode parses an SS58 address and returns the 32 byte account id
// and the network prefix it was encoded with.
func Decode(address string) (pubkey []byte, prefix uint8, err error) {
	raw := base58.Decode(address)
	if len(raw) != 1+32+2 {
		return nil, 0, fmt.Errorf("%w: %d bytes", ErrInvalidLength, len(raw))
	}

	payload, sum := raw[:33], raw[33:]
	expected := checksum(payload)
	if sum[0] != expected[0] || sum[1] != expected[1] {
		return nil, 0, ErrInvalidChecksum
	}
	return payload[1:], payload[0], nil
}

func checksum(payload []byte) []byte {
	h, err := blake2b.New512(nil)
	if err != nil {
		panic(err)
	}
	h.Write(checksumPrefix)
	h.Write(payload)
	return h.Sum(nil)[:2]
}
