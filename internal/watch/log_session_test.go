package watch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/stagewatch/internal/model"
	"github.com/vk/stagewatch/internal/testutil"
)

type deltaCollector struct {
	mu     sync.Mutex
	deltas []string
}

func (c *deltaCollector) push(delta string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deltas = append(c.deltas, delta)
}

func (c *deltaCollector) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deltas...)
}

func TestOpenLogPushesInitialContent(t *testing.T) {
	svc := testutil.NewFakeService("run-1", model.StatusInProgress)
	svc.SetLog("line one\n")
	coord := newTestCoordinator(svc, testutil.NewManualClock())
	defer coord.Close()

	var deltas deltaCollector
	s, err := coord.OpenLog(context.Background(), "run-1", 7, deltas.push)
	require.NoError(t, err)
	assert.Equal(t, StatePolling, s.State())
	assert.Equal(t, []string{"line one\n"}, deltas.all())
	assert.Equal(t, "line one\n", s.Content())
}

func TestLogSessionPushesOnlyAppendedText(t *testing.T) {
	svc := testutil.NewFakeService("run-1", model.StatusInProgress)
	svc.SetLog("line one\n")
	clock := testutil.NewManualClock()
	coord := newTestCoordinator(svc, clock)
	defer coord.Close()

	var deltas deltaCollector
	s, err := coord.OpenLog(context.Background(), "run-1", 7, deltas.push)
	require.NoError(t, err)

	fire(t, clock) // unchanged content, no push
	svc.SetLog("line one\nline two\n")
	fire(t, clock)

	require.Eventually(t, func() bool { return len(deltas.all()) == 2 }, eventually, pollEvery)
	assert.Equal(t, []string{"line one\n", "line two\n"}, deltas.all())
	assert.Equal(t, "line one\nline two\n", s.Content())
}

// Opening a log viewer twice for the same (run, log) pair yields exactly one
// active polling session; disposing it removes the registry entry and halts
// further fetches.
func TestOpenLogReusesAndDisposeHaltsFetching(t *testing.T) {
	svc := testutil.NewFakeService("run-1", model.StatusInProgress)
	svc.SetLog("hello")
	clock := testutil.NewManualClock()
	coord := newTestCoordinator(svc, clock)

	first, err := coord.OpenLog(context.Background(), "run-1", 7, nil)
	require.NoError(t, err)
	second, err := coord.OpenLog(context.Background(), "run-1", 7, nil)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, coord.Registry().Len())

	// A different log of the same run is its own session.
	other, err := coord.OpenLog(context.Background(), "run-1", 8, nil)
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, coord.Registry().Len())
	other.Close()

	first.Close()
	assert.Equal(t, 0, coord.Registry().Len())

	calls := svc.Calls()
	for clock.Fire() {
		// Drain orphaned waiters left by the cancelled loops.
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, svc.Calls(), "no fetch may happen after disposal")
}

func TestLogSessionPauseAndResume(t *testing.T) {
	svc := testutil.NewFakeService("run-1", model.StatusInProgress)
	svc.SetLog("part one")
	clock := testutil.NewManualClock()
	coord := newTestCoordinator(svc, clock)
	defer coord.Close()

	var deltas deltaCollector
	s, err := coord.OpenLog(context.Background(), "run-1", 7, deltas.push)
	require.NoError(t, err)

	s.Pause()
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, "part one", s.Content(), "pausing keeps the fetched content")

	// No fetches while paused.
	calls := svc.Calls()
	for clock.Fire() {
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, svc.Calls())

	svc.SetLog("part one, part two")
	s.Resume(context.Background())
	assert.Equal(t, StatePolling, s.State())
	fire(t, clock)

	require.Eventually(t, func() bool { return s.Content() == "part one, part two" }, eventually, pollEvery)
	assert.Equal(t, []string{"part one", ", part two"}, deltas.all())
}

func TestLogSessionGraceRefreshOnCompletion(t *testing.T) {
	svc := testutil.NewFakeService("run-1",
		model.StatusInProgress, // initial load
		model.StatusCompleted,  // tick 1
		model.StatusCompleted,  // grace refresh
	)
	svc.SetLog("building...")
	clock := testutil.NewManualClock()
	coord := newTestCoordinator(svc, clock)
	defer coord.Close()

	s, err := coord.OpenLog(context.Background(), "run-1", 7, nil)
	require.NoError(t, err)

	fire(t, clock) // tick 1, observes completed
	svc.SetLog("building...\ndone.")
	fire(t, clock) // grace delay

	require.Eventually(t, func() bool { return s.State() == StateTerminal }, eventually, pollEvery)
	assert.Equal(t, "building...\ndone.", s.Content(), "grace refresh captures trailing log output")
	assert.Equal(t, 3, svc.RunCalls())
	assert.Equal(t, 0, clock.Waiting())
}

func TestLogSessionStopsOnFetchError(t *testing.T) {
	svc := testutil.NewFakeService("run-1", model.StatusInProgress)
	svc.SetLog("so far so good")
	clock := testutil.NewManualClock()
	coord := newTestCoordinator(svc, clock)
	defer coord.Close()

	s, err := coord.OpenLog(context.Background(), "run-1", 7, nil)
	require.NoError(t, err)

	svc.SetError(testutil.ErrUnavailable)
	fire(t, clock)

	require.Eventually(t, func() bool { return s.State() == StateTerminal }, eventually, pollEvery)
	assert.Equal(t, "so far so good", s.Content(), "content fetched before the failure is kept")
}
