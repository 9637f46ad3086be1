package snapshot

import (
	"github.com/vk/stagewatch/internal/definition"
	"github.com/vk/stagewatch/internal/layout"
	"github.com/vk/stagewatch/internal/model"
)

// View is everything a status viewer renders for one run at one point in
// time: the run metadata, the stage tree, and the stages laid out into
// dependency columns.
type View struct {
	Run     *model.Run
	Stages  []StageNode
	Columns []layout.Column
}

// BuildView assembles the stage tree and lays it out. Each refresh produces
// a brand-new View; nothing is shared with previous ones.
func BuildView(run *model.Run, records []model.TimelineRecord, defs []definition.Stage) *View {
	stages := Assemble(records, defs)
	items := make([]layout.Item, 0, len(stages))
	for _, stage := range stages {
		items = append(items, stage.LayoutItem())
	}
	return &View{
		Run:     run,
		Stages:  stages,
		Columns: layout.Columns(items),
	}
}
