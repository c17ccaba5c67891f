// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"testing"

	log "github.com/ChainSafe/log15"
	"github.com/stretchr/testify/assert"
)

func TestLogLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, log.LvlInfo, logLevel(0))
	assert.Equal(t, log.LvlDebug, logLevel(1))
	assert.Equal(t, log.LvlTrace, logLevel(2))
	assert.Equal(t, log.LvlTrace, logLevel(5))
}
