package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/vk/stagewatch/internal/model"
)

// FakeService is a scripted, call-counting implementation of
// execsvc.Service. GetRun walks through Statuses one call at a time and
// stays on the last entry; the other fetches return whatever the test
// staged. Setting an error makes every call fail.
type FakeService struct {
	mu sync.Mutex

	runID    string
	statuses []model.RunStatus
	records  []model.TimelineRecord
	log      string
	err      error

	runCalls      int
	timelineCalls int
	logCalls      int
	cancelCalls   int
}

// NewFakeService creates a fake serving the given run with the scripted
// status sequence.
func NewFakeService(runID string, statuses ...model.RunStatus) *FakeService {
	if len(statuses) == 0 {
		statuses = []model.RunStatus{model.StatusInProgress}
	}
	return &FakeService{runID: runID, statuses: statuses}
}

// SetRecords stages the timeline returned by GetTimeline.
func (f *FakeService) SetRecords(records []model.TimelineRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = records
}

// SetLog stages the content returned by GetLogContent.
func (f *FakeService) SetLog(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = content
}

// SetError makes every subsequent call fail.
func (f *FakeService) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Calls returns the total number of fetches issued so far.
func (f *FakeService) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runCalls + f.timelineCalls + f.logCalls
}

// RunCalls returns the number of GetRun fetches issued so far.
func (f *FakeService) RunCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runCalls
}

// GetRun implements execsvc.Service.
func (f *FakeService) GetRun(_ context.Context, runID string) (*model.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	idx := f.runCalls
	f.runCalls++
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	return &model.Run{ID: runID, Status: f.statuses[idx]}, nil
}

// GetTimeline implements execsvc.Service.
func (f *FakeService) GetTimeline(_ context.Context, _ string) ([]model.TimelineRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.timelineCalls++
	return append([]model.TimelineRecord(nil), f.records...), nil
}

// GetLogContent implements execsvc.Service.
func (f *FakeService) GetLogContent(_ context.Context, _ string, _ int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.logCalls++
	return f.log, nil
}

// StartRun implements execsvc.Service.
func (f *FakeService) StartRun(_ context.Context, pipelineID string) (*model.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &model.Run{ID: f.runID, PipelineID: pipelineID, Status: model.StatusNotStarted}, nil
}

// CancelRun implements execsvc.Service.
func (f *FakeService) CancelRun(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
	return f.err
}

// RetryRun implements execsvc.Service.
func (f *FakeService) RetryRun(_ context.Context, runID string) (*model.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &model.Run{ID: runID, Status: model.StatusNotStarted}, nil
}

// ErrUnavailable is a canned fetch error for tests.
var ErrUnavailable = errors.New("service unavailable")
