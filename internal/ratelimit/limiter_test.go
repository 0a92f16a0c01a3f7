package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitAllowsFirstRequestImmediately(t *testing.T) {
	l := New("worldcat", 1)

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestWaitHonoursCancelledContext(t *testing.T) {
	l := NewInterval("worldcat", time.Hour)
	require.NoError(t, l.Wait(context.Background())) // consume the burst

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worldcat")
}

func TestAllow(t *testing.T) {
	l := NewInterval("worldcat", time.Hour)
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}
