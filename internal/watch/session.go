package watch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vk/stagewatch/internal/ctxlog"
	"github.com/vk/stagewatch/internal/definition"
	"github.com/vk/stagewatch/internal/snapshot"
)

// StatusSession is the polling session behind one status viewer. It
// re-fetches run metadata and timeline on every tick, rebuilds the snapshot
// view, and pushes it to the viewer when it changed.
type StatusSession struct {
	coord  *Coordinator
	key    string
	runID  string
	defs   []definition.Stage
	push   func(*snapshot.View)
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	active   bool
	lastHash uint64
	lastView *snapshot.View

	cancel context.CancelFunc
	done   chan struct{}
}

func newStatusSession(coord *Coordinator, runID string, defs []definition.Stage, push func(*snapshot.View)) *StatusSession {
	return &StatusSession{
		coord:  coord,
		key:    statusKey(runID),
		runID:  runID,
		defs:   defs,
		push:   push,
		state:  StateIdle,
		active: true,
	}
}

// Key implements Session.
func (s *StatusSession) Key() string {
	return s.key
}

// State returns the session's current lifecycle phase.
func (s *StatusSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done returns a channel closed when the polling loop has stopped, whether
// by terminal state, fetch failure, or disposal.
func (s *StatusSession) Done() <-chan struct{} {
	return s.done
}

// LastView returns the most recent snapshot pushed to the viewer. It stays
// valid after polling stops.
func (s *StatusSession) LastView() *snapshot.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastView
}

// start performs the initial load and, for non-terminal runs, launches the
// polling loop. An initial load failure is returned to the caller.
func (s *StatusSession) start(ctx context.Context) error {
	s.logger = ctxlog.FromContext(ctx)

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	terminal, err := s.refresh(loopCtx)
	if err != nil {
		cancel()
		close(s.done)
		return err
	}
	if terminal {
		s.setState(StateTerminal)
		close(s.done)
		return nil
	}

	s.setState(StatePolling)
	go s.run(loopCtx)
	return nil
}

// Close implements Session. It cancels the polling loop, waits for it to
// exit, and removes the registry entry. No fetch is issued afterwards.
func (s *StatusSession) Close() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()

	s.cancel()
	<-s.done
	s.coord.reg.remove(s.key)
}

func (s *StatusSession) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.coord.opts.Clock.After(s.coord.opts.StatusInterval):
		}

		terminal, err := s.refresh(ctx)
		if err != nil {
			// Fail-safe: a broken connection is not retried. The last
			// good snapshot stays on screen.
			s.logger.Warn("status polling stopped after fetch failure", "run_id", s.runID, "error", err)
			s.setState(StateTerminal)
			return
		}
		if terminal {
			s.graceRefresh(ctx)
			s.setState(StateTerminal)
			return
		}
	}
}

// graceRefresh performs the one extra refresh after the run status flips to
// completed, catching timeline updates that lag the flip.
func (s *StatusSession) graceRefresh(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-s.coord.opts.Clock.After(s.coord.opts.GraceDelay):
	}
	if _, err := s.refresh(ctx); err != nil {
		s.logger.Warn("final status refresh failed", "run_id", s.runID, "error", err)
	}
}

// refresh fetches run and timeline, rebuilds the view, and pushes it when
// changed. It reports whether the run status is terminal. A response that
// lands after disposal is discarded without touching the viewer.
func (s *StatusSession) refresh(ctx context.Context) (bool, error) {
	run, err := s.coord.svc.GetRun(ctx, s.runID)
	if err != nil {
		return false, err
	}
	records, err := s.coord.svc.GetTimeline(ctx, s.runID)
	if err != nil {
		return false, err
	}

	view := snapshot.BuildView(run, records, s.defs)
	hash, hashErr := hashRefresh(run, records)

	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return true, nil
	}
	// An unhashable view counts as changed; the worst case is a redundant
	// re-render.
	changed := hashErr != nil || s.lastView == nil || hash != s.lastHash
	if changed {
		s.lastHash = hash
		s.lastView = view
	}
	push := s.push
	s.mu.Unlock()

	if changed && push != nil {
		push(view)
	}
	return run.Status.Terminal(), nil
}

func (s *StatusSession) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
