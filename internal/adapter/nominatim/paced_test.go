package nominatim

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacedGeocoder_WaitsBeforeEachCall(t *testing.T) {
	inner := &countingGeocoder{result: sanFrancisco}
	clock := clockwork.NewFakeClock()
	paced := NewPacedGeocoder(inner, time.Second, clock)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := paced.Search(ctx, "Market St")
		done <- err
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Equal(t, 0, inner.count("Market St"), "call issued before the interval elapsed")
	clock.Advance(time.Second)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("search did not finish")
	}
	assert.Equal(t, 1, inner.count("Market St"))
}

func TestPacedGeocoder_CancelledWhileWaiting(t *testing.T) {
	inner := &countingGeocoder{result: sanFrancisco}
	paced := NewPacedGeocoder(inner, time.Hour, clockwork.NewFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := paced.Search(ctx, "Market St")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, inner.count("Market St"))
}

func TestPacedGeocoder_CacheHitsSkipPacing(t *testing.T) {
	inner := &countingGeocoder{result: sanFrancisco}
	clock := clockwork.NewFakeClock()
	cached := NewCachedGeocoder(NewPacedGeocoder(inner, time.Second, clock), 10, testMetrics())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := cached.Search(ctx, "San Francisco, CA")
		done <- err
	}()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Second)
	require.NoError(t, <-done)

	// The second lookup is served from the cache without touching the clock.
	result, err := cached.Search(ctx, "San Francisco, CA")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, 1, inner.count("San Francisco, CA"))
}
