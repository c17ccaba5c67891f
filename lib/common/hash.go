// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// HashLength is the expected length of the common.Hash type
const HashLength = 32

var ErrInvalidHashLength = errors.New("invalid hash length")

// Hash is a 32 byte block or storage hash.
type Hash [HashLength]byte

// NewHash casts a byte slice to a Hash. If the input is longer than
// 32 bytes, only the first 32 bytes are used.
func NewHash(in []byte) (h Hash) {
	copy(h[:], in)
	return h
}

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte {
	return h[:]
}

// IsEmpty returns true if the hash is the zero hash.
func (h Hash) IsEmpty() bool {
	return h == Hash{}
}

// String returns the 0x prefixed hex string for the hash.
func (h Hash) String() string {
	return fmt.Sprintf("0x%x", h[:])
}

// Short returns the first and last 4 bytes of the hex string for the hash.
func (h Hash) Short() string {
	const nBytes = 4
	return fmt.Sprintf("0x%x...%x", h[:nBytes], h[HashLength-nBytes:])
}

// HexToHash turns a 0x prefixed hex string into a Hash.
func HexToHash(in string) (Hash, error) {
	b, err := HexToBytes(in)
	if err != nil {
		return Hash{}, err
	}
	if len(b) != HashLength {
		return Hash{}, fmt.Errorf("%w: %d", ErrInvalidHashLength, len(b))
	}
	return NewHash(b), nil
}

// MustHexToHash turns a 0x prefixed hex string into a Hash,
// panicking on error. For use in tests only.
func MustHexToHash(in string) Hash {
	h, err := HexToHash(in)
	if err != nil {
		panic(err)
	}
	return h
}

// HexToBytes turns a hex string into a byte slice.
// The 0x prefix is optional.
func HexToBytes(in string) ([]byte, error) {
	in = strings.TrimPrefix(in, "0x")
	if len(in)%2 != 0 {
		return nil, errors.New("cannot decode an odd length string")
	}
	return hex.DecodeString(in)
}

// BytesToHex turns a byte slice into a 0x prefixed hex string.
func BytesToHex(in []byte) string {
	return "0x" + hex.EncodeToString(in)
}
