package snapshot

import (
	"sort"
	"strings"

	"github.com/vk/stagewatch/internal/definition"
	"github.com/vk/stagewatch/internal/layout"
	"github.com/vk/stagewatch/internal/model"
)

// TaskNode is a leaf of the execution tree.
type TaskNode struct {
	model.TimelineRecord
}

// JobNode is a job and the tasks it ran.
type JobNode struct {
	model.TimelineRecord
	Tasks []TaskNode
}

// StageNode is a stage of the run, its jobs, and the dependencies declared
// for it in the pipeline definition, resolved to display names.
type StageNode struct {
	model.TimelineRecord
	Jobs      []JobNode
	DependsOn []string

	// def is the matched stage definition, nil when none matched.
	def *definition.Stage
}

// LayoutItem converts the stage to the layout engine's input form. A matched
// definition contributes both of its declared names, so dependency references
// resolve no matter which form the service reported the stage under.
func (s StageNode) LayoutItem() layout.Item {
	it := layout.Item{Name: s.Name, DependsOn: s.DependsOn}
	if s.def != nil {
		it.Name = s.def.Name
		it.DisplayName = s.def.DisplayName
	}
	return it
}

// Assemble builds the stage tree for one run from its flat timeline and the
// stage definitions extracted from the pipeline text. Definitions only
// contribute dependency metadata; a stage with no matching definition still
// renders, just without dependency edges.
func Assemble(records []model.TimelineRecord, defs []definition.Stage) []StageNode {
	children := make(map[string][]model.TimelineRecord)
	for _, rec := range records {
		children[rec.ParentID] = append(children[rec.ParentID], rec)
	}

	var stages []StageNode
	for _, rec := range records {
		if rec.Type != model.RecordStage {
			continue
		}
		def := matchDefinition(rec.Name, defs)
		stage := StageNode{
			TimelineRecord: rec,
			Jobs:           jobsOf(rec, children),
			DependsOn:      resolveDependsOn(def, defs),
			def:            def,
		}
		stages = append(stages, stage)
	}

	sortByOrder(stages, func(s StageNode) int { return s.Order })
	return stages
}

// jobsOf collects a stage's jobs: those nested under a Phase record, plus
// those parented directly to the stage for engines that omit the Phase level.
func jobsOf(stage model.TimelineRecord, children map[string][]model.TimelineRecord) []JobNode {
	var jobs []JobNode
	appendJob := func(rec model.TimelineRecord) {
		job := JobNode{TimelineRecord: rec}
		for _, task := range children[rec.ID] {
			if task.Type == model.RecordTask {
				job.Tasks = append(job.Tasks, TaskNode{TimelineRecord: task})
			}
		}
		sortByOrder(job.Tasks, func(t TaskNode) int { return t.Order })
		jobs = append(jobs, job)
	}

	for _, child := range children[stage.ID] {
		switch child.Type {
		case model.RecordPhase:
			for _, rec := range children[child.ID] {
				if rec.Type == model.RecordJob {
					appendJob(rec)
				}
			}
		case model.RecordJob:
			appendJob(child)
		}
	}

	sortByOrder(jobs, func(j JobNode) int { return j.Order })
	return jobs
}

// matchDefinition finds the definition for a live stage by case-insensitive
// comparison against either declared name, first match wins.
func matchDefinition(stageName string, defs []definition.Stage) *definition.Stage {
	for i := range defs {
		if strings.EqualFold(defs[i].Name, stageName) || strings.EqualFold(defs[i].DisplayName, stageName) {
			return &defs[i]
		}
	}
	return nil
}

// resolveDependsOn returns a matched definition's dependencies resolved to
// display names. No match means no dependency metadata.
func resolveDependsOn(def *definition.Stage, defs []definition.Stage) []string {
	if def == nil {
		return nil
	}
	var resolved []string
	for _, ref := range def.DependsOn {
		resolved = append(resolved, displayNameFor(ref, defs))
	}
	return resolved
}

// displayNameFor maps a written dependency reference to the display name of
// the stage it points at. Unknown references pass through unchanged so the
// layout engine can decide to ignore them.
func displayNameFor(ref string, defs []definition.Stage) string {
	for _, def := range defs {
		if strings.EqualFold(def.Name, ref) || strings.EqualFold(def.DisplayName, ref) {
			return def.Label()
		}
	}
	return ref
}

// sortByOrder sorts records by the service's declared order field, keeping
// encounter order for ties and for records without one.
func sortByOrder[T any](nodes []T, order func(T) int) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return order(nodes[i]) < order(nodes[j])
	})
}
