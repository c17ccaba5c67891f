// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
)

// Twox128Hash computes xxHash64 twice with seeds 0 and 1 applied on
// the given byte array and returns the concatenation. Substrate uses
// this as the storage prefix hasher.
func Twox128Hash(msg []byte) ([]byte, error) {
	h0 := xxhash.NewS64(0)
	_, err := h0.Write(msg)
	if err != nil {
		return nil, err
	}

	h1 := xxhash.NewS64(1)
	_, err = h1.Write(msg)
	if err != nil {
		return nil, err
	}

	hash := make([]byte, 16)
	binary.LittleEndian.PutUint64(hash[:8], h0.Sum64())
	binary.LittleEndian.PutUint64(hash[8:], h1.Sum64())
	return hash, nil
}

// MustTwox128Hash calls Twox128Hash and panics on error. The xxhash
// writer cannot fail, so this is safe for static prefixes.
func MustTwox128Hash(msg []byte) []byte {
	hash, err := Twox128Hash(msg)
	if err != nil {
		panic(err)
	}
	return hash
}
