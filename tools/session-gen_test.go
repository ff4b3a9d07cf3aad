package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrollStream_EmitsAbsoluteOffsets(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	events := scrollStream(profiles["human"], rng, 30_000)
	require.Greater(t, len(events), 3)

	// Offsets accumulate; consecutive samples difference back to the
	// per-event delta.
	prev := 0.0
	for _, e := range events {
		delta := e.ScrollY - prev
		assert.Greater(t, delta, 0.0)
		assert.Less(t, delta, 121.0)
		prev = e.ScrollY
	}
}

func TestScrollStream_BotProfileConstantDeltas(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	events := scrollStream(profiles["linear-bot"], rng, 10_000)
	require.Greater(t, len(events), 2)

	prev := 0.0
	for _, e := range events {
		assert.Equal(t, 100.0, e.ScrollY-prev)
		prev = e.ScrollY
	}
}
