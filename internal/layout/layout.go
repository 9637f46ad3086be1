package layout

import (
	"sort"
	"strings"
)

// Item is the minimal view of a stage the layout algorithm needs. Both
// extracted stage definitions and live stage nodes convert to it.
type Item struct {
	Name        string
	DisplayName string
	// DependsOn entries may reference either internal or display names, in
	// any casing.
	DependsOn []string
}

// Label returns the display name, falling back to the internal name.
func (it Item) Label() string {
	if it.DisplayName != "" {
		return it.DisplayName
	}
	return it.Name
}

// Column is one vertical slice of the diagram: every item that ended up at
// the same depth, in their original relative order.
type Column struct {
	Depth int
	Items []Item
}

// Columns lays the items out into columns ordered by increasing depth.
func Columns(items []Item) []Column {
	depths := Depths(items)

	byDepth := make(map[int][]Item)
	maxDepth := 0
	for i, it := range items {
		d := depths[i]
		byDepth[d] = append(byDepth[d], it)
		if d > maxDepth {
			maxDepth = d
		}
	}

	var columns []Column
	for d := 0; d <= maxDepth; d++ {
		if col, ok := byDepth[d]; ok {
			columns = append(columns, Column{Depth: d, Items: col})
		}
	}
	return columns
}

// Depths computes the column depth for every item, keyed by the item's index.
//
// An item with no resolvable dependencies sits at depth 0; otherwise its
// depth is one past the deepest dependency. References that resolve to no
// known item are skipped, and so is the closing edge of a dependency cycle,
// which floors the revisited item at whatever its other dependencies allow
// (0 for a pure cycle).
//
// When no dependency information was recovered at all and there is more than
// one item, the items are assumed to run strictly sequentially and depth
// becomes the declaration index. That is a documented approximation of
// author intent, not a guarantee; it keeps the diagram useful for
// definitions whose dependency syntax could not be recovered.
func Depths(items []Item) map[int]int {
	resolve := resolutionIndex(items)

	memo := make(map[int]int, len(items))
	visiting := make(map[int]bool)

	var depthOf func(i int) int
	depthOf = func(i int) int {
		if d, ok := memo[i]; ok {
			return d
		}
		visiting[i] = true
		defer delete(visiting, i)

		depth := 0
		for _, ref := range items[i].DependsOn {
			j, ok := resolve[strings.ToLower(ref)]
			if !ok || j == i || visiting[j] {
				continue
			}
			if d := depthOf(j) + 1; d > depth {
				depth = d
			}
		}
		memo[i] = depth
		return depth
	}

	for i := range items {
		depthOf(i)
	}

	// Sequential fallback: every depth at 0 means nothing resolvable was
	// declared anywhere.
	if len(items) > 1 && allZero(memo) {
		for i := range items {
			memo[i] = i
		}
	}
	return memo
}

// resolutionIndex maps every lower-cased internal and display name to the
// index of its item, so dependency references resolve regardless of which
// form the author used. First declaration wins on collisions.
func resolutionIndex(items []Item) map[string]int {
	resolve := make(map[string]int, len(items)*2)
	for i, it := range items {
		for _, name := range []string{it.Name, it.DisplayName} {
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if _, taken := resolve[key]; !taken {
				resolve[key] = i
			}
		}
	}
	return resolve
}

func allZero(depths map[int]int) bool {
	for _, d := range depths {
		if d != 0 {
			return false
		}
	}
	return true
}

// sortedKeys is used by tests to walk depth maps deterministically.
func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
