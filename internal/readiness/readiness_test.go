package readiness

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botsense/internal/telemetry"
)

var testMins = map[telemetry.Channel]int{
	telemetry.ChannelMouse:    5,
	telemetry.ChannelKeyboard: 3,
	telemetry.ChannelScroll:   2,
}

func TestTracker_Lifecycle(t *testing.T) {
	tr := New([]telemetry.Channel{telemetry.ChannelMouse, telemetry.ChannelKeyboard}, testMins, nil)
	assert.Equal(t, StateNotStarted, tr.State())

	tr.Start()
	assert.Equal(t, StateCollecting, tr.State())

	// Starting again is a no-op.
	tr.Start()
	assert.Equal(t, StateCollecting, tr.State())
}

func TestTracker_ObserveRequiresTwoChannels(t *testing.T) {
	tr := New([]telemetry.Channel{telemetry.ChannelMouse, telemetry.ChannelKeyboard}, testMins, nil)
	tr.Start()

	// One channel at its minimum is not enough when two are enabled.
	tr.Observe(map[telemetry.Channel]int{telemetry.ChannelMouse: 5})
	assert.False(t, tr.Ready())

	tr.Observe(map[telemetry.Channel]int{
		telemetry.ChannelMouse:    5,
		telemetry.ChannelKeyboard: 3,
	})
	assert.True(t, tr.Ready())
}

func TestTracker_SingleChannelDeployment(t *testing.T) {
	tr := New([]telemetry.Channel{telemetry.ChannelKeyboard}, testMins, nil)
	tr.Start()

	tr.Observe(map[telemetry.Channel]int{telemetry.ChannelKeyboard: 2})
	assert.False(t, tr.Ready())

	tr.Observe(map[telemetry.Channel]int{telemetry.ChannelKeyboard: 3})
	assert.True(t, tr.Ready())
}

func TestTracker_NoEnabledChannelsNeverReady(t *testing.T) {
	tr := New(nil, testMins, nil)
	tr.Start()
	tr.Observe(map[telemetry.Channel]int{telemetry.ChannelMouse: 100})
	assert.False(t, tr.Ready())
}

func TestTracker_ObserveBeforeStartIgnored(t *testing.T) {
	tr := New([]telemetry.Channel{telemetry.ChannelScroll}, testMins, nil)
	tr.Observe(map[telemetry.Channel]int{telemetry.ChannelScroll: 10})
	assert.False(t, tr.Ready())
	assert.Equal(t, StateNotStarted, tr.State())
}

// =============================================================================
// Waiters
// =============================================================================

func TestTracker_WaitResolvesTrueOnReady(t *testing.T) {
	tr := New([]telemetry.Channel{telemetry.ChannelScroll}, testMins, nil)
	tr.Start()

	done := make(chan bool, 1)
	go func() {
		done <- tr.Wait(5 * time.Second)
	}()

	// Give the waiter a moment to register, then satisfy the predicate.
	time.Sleep(20 * time.Millisecond)
	tr.Observe(map[telemetry.Channel]int{telemetry.ChannelScroll: 2})

	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never resolved")
	}
}

func TestTracker_WaitAfterReadyImmediate(t *testing.T) {
	tr := New([]telemetry.Channel{telemetry.ChannelScroll}, testMins, nil)
	tr.Start()
	tr.Observe(map[telemetry.Channel]int{telemetry.ChannelScroll: 2})

	start := time.Now()
	assert.True(t, tr.Wait(5*time.Second))
	assert.Less(t, time.Since(start), time.Second)
}

func TestTracker_WaitBeforeStartImmediateFalse(t *testing.T) {
	tr := New([]telemetry.Channel{telemetry.ChannelScroll}, testMins, nil)
	assert.False(t, tr.Wait(5*time.Second))
}

func TestTracker_WaitTimeoutResolvesAllWaitersFalse(t *testing.T) {
	fired := make(chan struct{}, 1)
	tr := New([]telemetry.Channel{telemetry.ChannelMouse, telemetry.ChannelKeyboard}, testMins, func() {
		fired <- struct{}{}
	})
	tr.Start()

	var wg sync.WaitGroup
	results := make(chan bool, 3)
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			results <- tr.Wait(time.Hour)
		}()
	}
	time.Sleep(20 * time.Millisecond)

	// A third waiter with a short timeout trips the shared transition.
	results <- tr.Wait(50 * time.Millisecond)
	wg.Wait()
	close(results)

	for ok := range results {
		assert.False(t, ok)
	}
	assert.Equal(t, StateTimedOut, tr.State())

	// The notification still fires so partial results can be inspected.
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("on-ready notification missing after timeout")
	}

	// A later wait on a timed-out tracker is immediately false.
	assert.False(t, tr.Wait(time.Hour))
}

func TestTracker_StopResolvesFalseAndSuppressesNotification(t *testing.T) {
	var mu sync.Mutex
	fired := false
	tr := New([]telemetry.Channel{telemetry.ChannelScroll}, testMins, func() {
		mu.Lock()
		fired = true
		mu.Unlock()
	})
	tr.Start()

	done := make(chan bool, 1)
	go func() {
		done <- tr.Wait(time.Hour)
	}()
	time.Sleep(20 * time.Millisecond)

	tr.Stop()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never resolved on stop")
	}

	// Even if the predicate would pass now, the session is over.
	tr.Observe(map[telemetry.Channel]int{telemetry.ChannelScroll: 10})
	assert.False(t, tr.Ready())

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, fired)
}

func TestTracker_NotificationFiresOnce(t *testing.T) {
	var mu sync.Mutex
	count := 0
	tr := New([]telemetry.Channel{telemetry.ChannelScroll}, testMins, func() {
		mu.Lock()
		count++
		mu.Unlock()
	})
	tr.Start()

	counts := map[telemetry.Channel]int{telemetry.ChannelScroll: 2}
	tr.Observe(counts)
	tr.Observe(counts)
	tr.Observe(counts)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, count)
}

func TestTracker_PanickingNotificationContained(t *testing.T) {
	tr := New([]telemetry.Channel{telemetry.ChannelScroll}, testMins, func() {
		panic("consumer bug")
	})
	tr.Start()

	assert.NotPanics(t, func() {
		tr.Observe(map[telemetry.Channel]int{telemetry.ChannelScroll: 2})
	})
	assert.True(t, tr.Ready())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "not_started", StateNotStarted.String())
	assert.Equal(t, "collecting", StateCollecting.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "timed_out", StateTimedOut.String())
	assert.Equal(t, "unknown", State(99).String())
}
