package watch

import (
	"context"
	"sync"
	"time"

	"github.com/vk/stagewatch/internal/definition"
	"github.com/vk/stagewatch/internal/execsvc"
	"github.com/vk/stagewatch/internal/snapshot"
)

const (
	defaultStatusInterval = 5 * time.Second
	defaultLogInterval    = 2 * time.Second
	defaultGraceDelay     = time.Second
)

// Options tunes the coordinator's polling cadence. Zero values mean
// defaults.
type Options struct {
	// StatusInterval is the tick period of status sessions.
	StatusInterval time.Duration
	// LogInterval is the tick period of log tailing sessions.
	LogInterval time.Duration
	// GraceDelay is how long a session waits after the run status flips to
	// completed before its one final refresh. Timeline updates can lag the
	// top-level status flip.
	GraceDelay time.Duration
	// Clock overrides timer scheduling; nil means the system clock.
	Clock Clock
}

func (o Options) withDefaults() Options {
	if o.StatusInterval <= 0 {
		o.StatusInterval = defaultStatusInterval
	}
	if o.LogInterval <= 0 {
		o.LogInterval = defaultLogInterval
	}
	if o.GraceDelay <= 0 {
		o.GraceDelay = defaultGraceDelay
	}
	if o.Clock == nil {
		o.Clock = SystemClock()
	}
	return o
}

// Coordinator owns the viewer registry and opens polling sessions against
// one execution service.
type Coordinator struct {
	svc  execsvc.Service
	opts Options
	reg  *Registry

	// openMu serializes the lookup-or-insert step of the open calls so two
	// concurrent opens of the same target cannot both create a session.
	openMu sync.Mutex
}

// NewCoordinator creates a coordinator with an empty registry.
func NewCoordinator(svc execsvc.Service, opts Options) *Coordinator {
	return &Coordinator{
		svc:  svc,
		opts: opts.withDefaults(),
		reg:  NewRegistry(),
	}
}

// Registry exposes the coordinator's session registry.
func (c *Coordinator) Registry() *Registry {
	return c.reg
}

// OpenStatus opens (or reveals) the status viewer session for a run. The
// push callback receives a fresh snapshot view on every observed change,
// starting with one immediate initial load. For a run already in a terminal
// state no polling loop is started.
//
// Opening a run that already has a live session returns that session
// untouched; the new push callback is discarded, matching the "reveal the
// existing viewer" behavior.
func (c *Coordinator) OpenStatus(ctx context.Context, runID string, defs []definition.Stage, push func(*snapshot.View)) (*StatusSession, error) {
	c.openMu.Lock()
	if existing, ok := c.reg.get(statusKey(runID)); ok {
		c.openMu.Unlock()
		return existing.(*StatusSession), nil
	}
	s := newStatusSession(c, runID, defs, push)
	c.reg.insert(s)
	c.openMu.Unlock()

	if err := s.start(ctx); err != nil {
		c.reg.remove(s.Key())
		return nil, err
	}
	return s, nil
}

// OpenLog opens (or reveals) the log tailing session for one log of a run.
// The push callback receives appended text, starting with the full content
// fetched on open.
func (c *Coordinator) OpenLog(ctx context.Context, runID string, logID int, push func(delta string)) (*LogSession, error) {
	c.openMu.Lock()
	if existing, ok := c.reg.get(logKey(runID, logID)); ok {
		c.openMu.Unlock()
		return existing.(*LogSession), nil
	}
	s := newLogSession(c, runID, logID, push)
	c.reg.insert(s)
	c.openMu.Unlock()

	if err := s.start(ctx); err != nil {
		c.reg.remove(s.Key())
		return nil, err
	}
	return s, nil
}

// Close disposes every live session.
func (c *Coordinator) Close() {
	c.reg.CloseAll()
}
