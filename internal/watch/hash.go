package watch

import (
	"github.com/mitchellh/hashstructure/v2"

	"github.com/vk/stagewatch/internal/model"
)

// fingerprint is the change-detection view of one refresh: the run state
// plus a flattened rendering of every timeline record. Only exported basic
// types appear here; timestamps are reduced to Unix nanoseconds so the
// structure hashes reliably.
type fingerprint struct {
	RunStatus string
	RunResult string
	Records   []recordFingerprint
}

type recordFingerprint struct {
	ID     string
	State  string
	Result string
	Name   string
	Order  int
	Start  int64
	Finish int64
	LogID  int
	Issues []string
}

// hashRefresh condenses a fetched run and timeline into a single hash. Two
// refreshes hash equal exactly when re-rendering would be redundant.
func hashRefresh(run *model.Run, records []model.TimelineRecord) (uint64, error) {
	fp := fingerprint{
		RunStatus: string(run.Status),
		RunResult: run.Result,
		Records:   make([]recordFingerprint, 0, len(records)),
	}
	for _, rec := range records {
		rfp := recordFingerprint{
			ID:     rec.ID,
			State:  rec.State,
			Result: rec.Result,
			Name:   rec.Name,
			Order:  rec.Order,
			Start:  rec.StartTime.UnixNano(),
			Finish: rec.FinishTime.UnixNano(),
		}
		for _, issue := range rec.Issues {
			rfp.Issues = append(rfp.Issues, issue.Type+": "+issue.Message)
		}
		if rec.Log != nil {
			rfp.LogID = rec.Log.ID
		}
		fp.Records = append(fp.Records, rfp)
	}
	return hashstructure.Hash(fp, hashstructure.FormatV2, nil)
}
