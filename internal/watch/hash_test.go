package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/stagewatch/internal/model"
)

func TestHashRefreshStableForEqualInputs(t *testing.T) {
	run := &model.Run{ID: "run-1", Status: model.StatusInProgress}
	records := []model.TimelineRecord{
		{ID: "s1", Type: model.RecordStage, Name: "Build", State: "inProgress"},
	}

	h1, err := hashRefresh(run, records)
	require.NoError(t, err)
	h2, err := hashRefresh(run, records)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

// An issue whose message changes while the issue count stays the same must
// still count as a change, or the viewer keeps showing the stale message.
func TestHashRefreshSeesIssueMessageChange(t *testing.T) {
	run := &model.Run{ID: "run-1", Status: model.StatusInProgress}
	records := []model.TimelineRecord{
		{ID: "s1", Type: model.RecordStage, Name: "Build",
			Issues: []model.Issue{{Type: "warning", Message: "disk almost full"}}},
	}

	before, err := hashRefresh(run, records)
	require.NoError(t, err)

	records[0].Issues[0].Message = "disk full"
	after, err := hashRefresh(run, records)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestHashRefreshSeesStateChange(t *testing.T) {
	run := &model.Run{ID: "run-1", Status: model.StatusInProgress}
	records := []model.TimelineRecord{
		{ID: "s1", Type: model.RecordStage, Name: "Build", State: "inProgress"},
	}

	before, err := hashRefresh(run, records)
	require.NoError(t, err)

	records[0].State = "completed"
	records[0].Result = "succeeded"
	after, err := hashRefresh(run, records)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}
