// Package render turns the core's produced structures into terminal output:
// the left-to-right stage dependency diagram and the stage/job/task tree of
// a run. It is a sample consumer of the core, not part of its contract.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vk/stagewatch/internal/layout"
	"github.com/vk/stagewatch/internal/snapshot"
)

var (
	stageBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	columnStyle = lipgloss.NewStyle().MarginRight(3)

	headerStyle = lipgloss.NewStyle().Bold(true)

	dimStyle = lipgloss.NewStyle().Faint(true)
)

// Diagram renders the laid-out columns side by side, followed by the edge
// list so dependencies that skip columns stay visible in plain text.
func Diagram(columns []layout.Column) string {
	if len(columns) == 0 {
		return "no stages found\n"
	}

	rendered := make([]string, 0, len(columns))
	for _, col := range columns {
		boxes := make([]string, 0, len(col.Items))
		for _, it := range col.Items {
			boxes = append(boxes, stageBoxStyle.Render(it.Label()))
		}
		rendered = append(rendered, columnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, boxes...)))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n")

	if edges := layout.Connectors(columns); len(edges) > 0 {
		b.WriteString("\n")
		for _, edge := range edges {
			b.WriteString(dimStyle.Render(fmt.Sprintf("%s -> %s", edge.From, edge.To)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Tree renders a run snapshot as an indented stage/job/task listing.
func Tree(view *snapshot.View) string {
	var b strings.Builder
	if view.Run != nil {
		title := view.Run.Name
		if title == "" {
			title = view.Run.ID
		}
		b.WriteString(headerStyle.Render(fmt.Sprintf("%s  [%s]", title, view.Run.Status)))
		b.WriteString("\n")
	}

	for _, stage := range view.Stages {
		b.WriteString(fmt.Sprintf("%s %s%s\n", statusGlyph(stage.State, stage.Result), stage.Name, depsSuffix(stage.DependsOn)))
		for _, job := range stage.Jobs {
			b.WriteString(fmt.Sprintf("  %s %s%s\n", statusGlyph(job.State, job.Result), job.Name, durationSuffix(job.Duration().String(), job.Started())))
			for _, task := range job.Tasks {
				b.WriteString(fmt.Sprintf("    %s %s\n", statusGlyph(task.State, task.Result), task.Name))
			}
		}
	}
	return b.String()
}

func depsSuffix(deps []string) string {
	if len(deps) == 0 {
		return ""
	}
	return dimStyle.Render(fmt.Sprintf("  (after %s)", strings.Join(deps, ", ")))
}

func durationSuffix(d string, started bool) string {
	if !started || d == "0s" {
		return ""
	}
	return dimStyle.Render("  " + d)
}

// statusGlyph picks a single-character marker for a record's state/result.
func statusGlyph(state, result string) string {
	switch strings.ToLower(state) {
	case "inprogress":
		return "▶"
	case "pending", "notstarted", "":
		return "·"
	}
	switch strings.ToLower(result) {
	case "succeeded":
		return "✓"
	case "failed":
		return "✗"
	case "skipped":
		return "-"
	case "canceled", "cancelled":
		return "⊘"
	default:
		return "·"
	}
}
