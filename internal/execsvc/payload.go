package execsvc

import (
	"strings"
	"time"

	"github.com/vk/stagewatch/internal/model"
)

// runPayload is the wire shape of a run.
type runPayload struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	PipelineID string     `json:"pipelineId"`
	State      string     `json:"state"`
	Result     string     `json:"result"`
	StartTime  *time.Time `json:"startTime"`
	FinishTime *time.Time `json:"finishTime"`
	// Legacy field names still emitted by older engines.
	CreatedDate  *time.Time `json:"createdDate"`
	FinishedDate *time.Time `json:"finishedDate"`
}

func (p runPayload) toModel() model.Run {
	return model.Run{
		ID:         p.ID,
		Name:       p.Name,
		PipelineID: p.PipelineID,
		Status:     parseStatus(p.State),
		Result:     p.Result,
		StartTime:  pickTime(p.StartTime, p.CreatedDate),
		FinishTime: pickTime(p.FinishTime, p.FinishedDate),
	}
}

// timelinePayload is the wire shape of a timeline fetch.
type timelinePayload struct {
	Records []recordPayload `json:"records"`
}

type recordPayload struct {
	ID         string     `json:"id"`
	ParentID   string     `json:"parentId"`
	Type       string     `json:"type"`
	Name       string     `json:"name"`
	State      string     `json:"state"`
	Result     string     `json:"result"`
	Order      int        `json:"order"`
	StartTime  *time.Time `json:"startTime"`
	FinishTime *time.Time `json:"finishTime"`
	// Legacy field names still emitted by older engines.
	CreatedDate  *time.Time `json:"createdDate"`
	FinishedDate *time.Time `json:"finishedDate"`
	Log          *struct {
		ID int `json:"id"`
	} `json:"log"`
	Issues []struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"issues"`
}

func (p recordPayload) toModel() model.TimelineRecord {
	rec := model.TimelineRecord{
		ID:         p.ID,
		ParentID:   p.ParentID,
		Type:       model.RecordType(p.Type),
		Name:       p.Name,
		State:      p.State,
		Result:     p.Result,
		Order:      p.Order,
		StartTime:  pickTime(p.StartTime, p.CreatedDate),
		FinishTime: pickTime(p.FinishTime, p.FinishedDate),
	}
	if p.Log != nil {
		rec.Log = &model.LogRef{ID: p.Log.ID}
	}
	for _, issue := range p.Issues {
		rec.Issues = append(rec.Issues, model.Issue{Type: issue.Type, Message: issue.Message})
	}
	return rec
}

// pickTime prefers the explicit start/finish field over its legacy
// created/finished counterpart.
func pickTime(explicit, legacy *time.Time) time.Time {
	if explicit != nil {
		return *explicit
	}
	if legacy != nil {
		return *legacy
	}
	return time.Time{}
}

func parseStatus(state string) model.RunStatus {
	switch strings.ToLower(state) {
	case "notstarted":
		return model.StatusNotStarted
	case "inprogress":
		return model.StatusInProgress
	case "completed":
		return model.StatusCompleted
	case "cancelling", "canceling":
		return model.StatusCanceling
	default:
		return model.StatusUnknown
	}
}
