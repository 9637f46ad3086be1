package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(col Column) []string {
	out := make([]string, 0, len(col.Items))
	for _, it := range col.Items {
		out = append(out, it.Name)
	}
	return out
}

func TestColumnsLinearChain(t *testing.T) {
	items := []Item{
		{Name: "A"},
		{Name: "B", DependsOn: []string{"A"}},
		{Name: "C", DependsOn: []string{"A", "B"}},
	}

	columns := Columns(items)
	require.Len(t, columns, 3)
	assert.Equal(t, []string{"A"}, names(columns[0]))
	assert.Equal(t, []string{"B"}, names(columns[1]))
	assert.Equal(t, []string{"C"}, names(columns[2]))
}

func TestColumnsDiamond(t *testing.T) {
	items := []Item{
		{Name: "A"},
		{Name: "B", DependsOn: []string{"A"}},
		{Name: "C", DependsOn: []string{"A"}},
		{Name: "D", DependsOn: []string{"B", "C"}},
	}

	columns := Columns(items)
	require.Len(t, columns, 3)
	assert.Equal(t, []string{"A"}, names(columns[0]))
	assert.Equal(t, []string{"B", "C"}, names(columns[1]), "encounter order preserved within a column")
	assert.Equal(t, []string{"D"}, names(columns[2]))
}

func TestDepthsCycleTerminates(t *testing.T) {
	items := []Item{
		{Name: "A", DependsOn: []string{"B"}},
		{Name: "B", DependsOn: []string{"A"}},
	}

	depths := Depths(items)
	require.Len(t, depths, 2)

	atFloor := 0
	for _, i := range sortedKeys(depths) {
		if depths[i] == 0 {
			atFloor++
		}
	}
	assert.GreaterOrEqual(t, atFloor, 1, "at least one stage of the cycle floors at depth 0")
}

func TestDepthsSequentialFallback(t *testing.T) {
	items := []Item{{Name: "A"}, {Name: "B"}, {Name: "C"}}

	depths := Depths(items)
	assert.Equal(t, map[int]int{0: 0, 1: 1, 2: 2}, depths)

	columns := Columns(items)
	require.Len(t, columns, 3)
	assert.Equal(t, []string{"A"}, names(columns[0]))
	assert.Equal(t, []string{"B"}, names(columns[1]))
	assert.Equal(t, []string{"C"}, names(columns[2]))
}

func TestDepthsSingleStageStaysAtZero(t *testing.T) {
	depths := Depths([]Item{{Name: "Solo"}})
	assert.Equal(t, map[int]int{0: 0}, depths)
}

func TestDepthsResolvesDisplayNames(t *testing.T) {
	items := []Item{
		{Name: "stage_x", DisplayName: "Build Everything"},
		{Name: "stage_y", DependsOn: []string{"build everything"}},
	}

	depths := Depths(items)
	assert.Equal(t, 0, depths[0])
	assert.Equal(t, 1, depths[1], "display-name reference resolves case-insensitively")
}

func TestDepthsUnresolvableReferenceIgnored(t *testing.T) {
	items := []Item{
		{Name: "A"},
		{Name: "B", DependsOn: []string{"A", "Ghost"}},
	}

	depths := Depths(items)
	assert.Equal(t, 0, depths[0])
	assert.Equal(t, 1, depths[1])
}

func TestConnectorsExplicitDependencies(t *testing.T) {
	items := []Item{
		{Name: "A", DisplayName: "Alpha"},
		{Name: "B", DependsOn: []string{"a"}},
		{Name: "C", DependsOn: []string{"Alpha", "B"}},
	}

	edges := Connectors(Columns(items))
	assert.Contains(t, edges, Edge{From: "Alpha", To: "B"})
	assert.Contains(t, edges, Edge{From: "Alpha", To: "C"})
	assert.Contains(t, edges, Edge{From: "B", To: "C"})
	assert.Len(t, edges, 3)
}

func TestConnectorsDefaultAttachment(t *testing.T) {
	// Sequential fallback puts the stages in separate columns with no
	// declared edges; each stage attaches to everything in the previous
	// column.
	items := []Item{{Name: "A"}, {Name: "B"}, {Name: "C"}}

	edges := Connectors(Columns(items))
	assert.Equal(t, []Edge{{From: "A", To: "B"}, {From: "B", To: "C"}}, edges)
}
