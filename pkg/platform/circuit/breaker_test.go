package circuit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBreakerStartsClosed(t *testing.T) {
	b := New("ratelimit")
	assert.Equal(t, "ratelimit", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())
}

func TestBreakerLifecycle(t *testing.T) {
	b := New("ratelimit", WithFailureThreshold(2), WithSuccessThreshold(2))

	useFallback, change := b.RecordFailure()
	assert.False(t, useFallback)
	assert.Equal(t, StateChange{}, change)

	useFallback, change = b.RecordFailure()
	require.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.Equal(t, "open", b.State().String())

	// further failures keep it open without reporting another transition
	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened)

	usePrimary, change := b.RecordSuccess()
	assert.False(t, usePrimary, "a single probe success is not enough")
	assert.False(t, change.Closed)

	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.False(t, b.IsOpen())
}

func TestFailureInterruptsRecovery(t *testing.T) {
	b := New("ratelimit", WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()

	usePrimary, _ := b.RecordSuccess()
	assert.False(t, usePrimary, "success count restarts after a failure")
	assert.True(t, b.IsOpen())
}

func TestSuccessWhileClosedClearsFailures(t *testing.T) {
	b := New("ratelimit", WithFailureThreshold(2))
	b.RecordFailure()
	b.RecordSuccess()
	useFallback, _ := b.RecordFailure()
	assert.False(t, useFallback)
	assert.False(t, b.IsOpen())
}

func TestNonPositiveThresholdsKeepDefaults(t *testing.T) {
	b := New("ratelimit", WithFailureThreshold(0), WithSuccessThreshold(-1))
	for i := 0; i < defaultFailureThreshold-1; i++ {
		b.RecordFailure()
	}
	assert.False(t, b.IsOpen())
	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestReset(t *testing.T) {
	b := New("ratelimit", WithFailureThreshold(1))
	b.RecordFailure()
	require.True(t, b.IsOpen())
	b.Reset()
	assert.False(t, b.IsOpen())
}

func TestConcurrentFailuresOpenOnce(t *testing.T) {
	b := New("ratelimit", WithFailureThreshold(10))
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		opened int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, change := b.RecordFailure(); change.Opened {
				mu.Lock()
				opened++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, opened)
}
