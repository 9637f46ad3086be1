package watch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vk/stagewatch/internal/ctxlog"
)

// LogSession tails one log of a run. Ticks fetch the full log content and
// push only the appended suffix to the viewer. The session can be paused and
// resumed without losing the content fetched so far.
type LogSession struct {
	coord  *Coordinator
	key    string
	runID  string
	logID  int
	push   func(delta string)
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	active  bool
	content string

	cancel context.CancelFunc
	done   chan struct{}
}

func newLogSession(coord *Coordinator, runID string, logID int, push func(delta string)) *LogSession {
	return &LogSession{
		coord:  coord,
		key:    logKey(runID, logID),
		runID:  runID,
		logID:  logID,
		push:   push,
		state:  StateIdle,
		active: true,
	}
}

// Key implements Session.
func (s *LogSession) Key() string {
	return s.key
}

// State returns the session's current lifecycle phase.
func (s *LogSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done returns a channel closed when the current tailing loop has stopped.
// Resume installs a fresh channel.
func (s *LogSession) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Content returns everything fetched so far. Pausing never discards it.
func (s *LogSession) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// start performs the initial fetch (pushing the full current content) and,
// for non-terminal runs, launches the tailing loop.
func (s *LogSession) start(ctx context.Context) error {
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

// Pause stops the tailing loop without discarding the session or its
// accumulated content. A session that is not polling is left alone.
func (s *LogSession) Pause() {
	s.mu.Lock()
	if !s.active || s.state != StatePolling {
		s.mu.Unlock()
		return
	}
	s.state = StateIdle
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
}

// Resume restarts the tailing loop of a paused session. Terminal and
// disposed sessions are left alone.
func (s *LogSession) Resume(ctx context.Context) {
	s.mu.Lock()
	if !s.active || s.state != StateIdle {
		s.mu.Unlock()
		return
	}
	s.state = StatePolling
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.run(loopCtx)
}

// Close implements Session.
func (s *LogSession) Close() {
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

func (s *LogSession) run(ctx context.Context) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.coord.opts.Clock.After(s.coord.opts.LogInterval):
		}

		terminal, err := s.refresh(ctx)
		if err != nil {
			s.logger.Warn("log tailing stopped after fetch failure", "run_id", s.runID, "log_id", s.logID, "error", err)
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

func (s *LogSession) graceRefresh(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-s.coord.opts.Clock.After(s.coord.opts.GraceDelay):
	}
	if _, err := s.refresh(ctx); err != nil {
		s.logger.Warn("final log refresh failed", "run_id", s.runID, "log_id", s.logID, "error", err)
	}
}

// refresh fetches run state and log content, pushing any appended text.
// Length comparison decides whether anything changed. It reports whether
// the run status is terminal.
func (s *LogSession) refresh(ctx context.Context) (bool, error) {
	run, err := s.coord.svc.GetRun(ctx, s.runID)
	if err != nil {
		return false, err
	}
	content, err := s.coord.svc.GetLogContent(ctx, s.runID, s.logID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return true, nil
	}
	var delta string
	if len(content) > len(s.content) {
		delta = content[len(s.content):]
		s.content = content
	}
	push := s.push
	s.mu.Unlock()

	if delta != "" && push != nil {
		push(delta)
	}
	return run.Status.Terminal(), nil
}

func (s *LogSession) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
