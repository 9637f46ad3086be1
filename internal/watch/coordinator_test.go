package watch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/stagewatch/internal/model"
	"github.com/vk/stagewatch/internal/snapshot"
	"github.com/vk/stagewatch/internal/testutil"
)

const (
	eventually = 2 * time.Second
	pollEvery  = 5 * time.Millisecond
)

// viewCounter collects pushed snapshot views.
type viewCounter struct {
	mu    sync.Mutex
	views []*snapshot.View
}

func (c *viewCounter) push(v *snapshot.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views = append(c.views, v)
}

func (c *viewCounter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.views)
}

func newTestCoordinator(svc *testutil.FakeService, clock *testutil.ManualClock) *Coordinator {
	return NewCoordinator(svc, Options{Clock: clock})
}

// fire drives the manual clock until a pending waiter accepted the tick.
func fire(t *testing.T, clock *testutil.ManualClock) {
	t.Helper()
	require.Eventually(t, clock.Fire, eventually, pollEvery, "no polling loop arrived at its timer")
}

func TestOpenStatusPerformsInitialLoad(t *testing.T) {
	svc := testutil.NewFakeService("run-1", model.StatusInProgress)
	svc.SetRecords([]model.TimelineRecord{
		{ID: "s1", Type: model.RecordStage, Name: "Build", Order: 1},
	})
	coord := newTestCoordinator(svc, testutil.NewManualClock())
	defer coord.Close()

	var views viewCounter
	s, err := coord.OpenStatus(context.Background(), "run-1", nil, views.push)
	require.NoError(t, err)
	assert.Equal(t, StatePolling, s.State())
	require.Equal(t, 1, views.count())
	require.NotNil(t, s.LastView())
	require.Len(t, s.LastView().Stages, 1)
	assert.Equal(t, "Build", s.LastView().Stages[0].Name)
}

func TestOpenStatusReusesLiveSession(t *testing.T) {
	svc := testutil.NewFakeService("run-1", model.StatusInProgress)
	coord := newTestCoordinator(svc, testutil.NewManualClock())
	defer coord.Close()

	first, err := coord.OpenStatus(context.Background(), "run-1", nil, nil)
	require.NoError(t, err)
	second, err := coord.OpenStatus(context.Background(), "run-1", nil, nil)
	require.NoError(t, err)

	assert.Same(t, first, second, "second open must reuse the live session")
	assert.Equal(t, 1, coord.Registry().Len())
}

func TestOpenStatusInitialLoadFailure(t *testing.T) {
	svc := testutil.NewFakeService("run-1", model.StatusInProgress)
	svc.SetError(testutil.ErrUnavailable)
	coord := newTestCoordinator(svc, testutil.NewManualClock())

	_, err := coord.OpenStatus(context.Background(), "run-1", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 0, coord.Registry().Len(), "failed open must not leave a registry entry")
}

func TestStatusSessionTerminalRunDoesNotPoll(t *testing.T) {
	svc := testutil.NewFakeService("run-1", model.StatusCompleted)
	clock := testutil.NewManualClock()
	coord := newTestCoordinator(svc, clock)
	defer coord.Close()

	s, err := coord.OpenStatus(context.Background(), "run-1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StateTerminal, s.State())
	assert.Equal(t, 1, svc.RunCalls())
	assert.Equal(t, 0, clock.Waiting())
}

// Run status flips to completed on the second tick: the session performs
// exactly one more refresh after a grace delay, then stops permanently.
func TestStatusSessionGraceRefreshThenStops(t *testing.T) {
	svc := testutil.NewFakeService("run-1",
		model.StatusInProgress, // initial load
		model.StatusInProgress, // tick 1
		model.StatusCompleted,  // tick 2
		model.StatusCompleted,  // grace refresh
	)
	clock := testutil.NewManualClock()
	coord := newTestCoordinator(svc, clock)
	defer coord.Close()

	s, err := coord.OpenStatus(context.Background(), "run-1", nil, nil)
	require.NoError(t, err)

	fire(t, clock) // tick 1
	fire(t, clock) // tick 2, observes completed
	fire(t, clock) // grace delay

	require.Eventually(t, func() bool { return s.State() == StateTerminal }, eventually, pollEvery)
	assert.Equal(t, 4, svc.RunCalls())
	assert.Equal(t, 0, clock.Waiting(), "no timer may be armed after the grace refresh")
	assert.False(t, clock.Fire())
	assert.Equal(t, 4, svc.RunCalls(), "no fetches after the grace refresh")
}

func TestStatusSessionPushesOnlyOnChange(t *testing.T) {
	svc := testutil.NewFakeService("run-1", model.StatusInProgress)
	svc.SetRecords([]model.TimelineRecord{
		{ID: "s1", Type: model.RecordStage, Name: "Build", Order: 1, State: "inProgress"},
	})
	clock := testutil.NewManualClock()
	coord := newTestCoordinator(svc, clock)
	defer coord.Close()

	var views viewCounter
	_, err := coord.OpenStatus(context.Background(), "run-1", nil, views.push)
	require.NoError(t, err)
	require.Equal(t, 1, views.count())

	fire(t, clock)
	fire(t, clock)
	require.Eventually(t, func() bool { return svc.RunCalls() >= 3 }, eventually, pollEvery)
	assert.Equal(t, 1, views.count(), "identical snapshots must not be re-pushed")

	svc.SetRecords([]model.TimelineRecord{
		{ID: "s1", Type: model.RecordStage, Name: "Build", Order: 1, State: "completed"},
	})
	fire(t, clock)
	require.Eventually(t, func() bool { return views.count() == 2 }, eventually, pollEvery)
}

func TestStatusSessionStopsOnFetchError(t *testing.T) {
	svc := testutil.NewFakeService("run-1", model.StatusInProgress)
	clock := testutil.NewManualClock()
	coord := newTestCoordinator(svc, clock)
	defer coord.Close()

	var views viewCounter
	s, err := coord.OpenStatus(context.Background(), "run-1", nil, views.push)
	require.NoError(t, err)
	lastGood := s.LastView()
	require.NotNil(t, lastGood)

	svc.SetError(testutil.ErrUnavailable)
	fire(t, clock)

	require.Eventually(t, func() bool { return s.State() == StateTerminal }, eventually, pollEvery)
	assert.Equal(t, 0, clock.Waiting(), "a failed fetch must not re-arm the timer")
	assert.Same(t, lastGood, s.LastView(), "the last good snapshot stays available")
}

func TestStatusSessionCloseHaltsFetching(t *testing.T) {
	svc := testutil.NewFakeService("run-1", model.StatusInProgress)
	clock := testutil.NewManualClock()
	coord := newTestCoordinator(svc, clock)

	s, err := coord.OpenStatus(context.Background(), "run-1", nil, nil)
	require.NoError(t, err)
	fire(t, clock)
	require.Eventually(t, func() bool { return svc.RunCalls() == 2 }, eventually, pollEvery)

	s.Close()
	assert.Equal(t, 0, coord.Registry().Len())

	calls := svc.Calls()
	for clock.Fire() {
		// Drain any orphaned waiter left by the cancelled loop.
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, svc.Calls(), "no fetch may happen after disposal")

	s.Close() // second close is a no-op
}
