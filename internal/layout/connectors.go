package layout

import "strings"

// Edge is one connector of the diagram, drawn from a dependency to the item
// that declared it. Names are the items' labels.
type Edge struct {
	From string
	To   string
}

// Connectors returns the edges to draw between the laid-out columns.
//
// An item with resolved dependencies gets one edge per (item, dependency)
// pair. An item that declared nothing resolvable still has to visually
// attach to everything upstream of it, so it gets an edge from every item in
// the previous column.
func Connectors(columns []Column) []Edge {
	resolve := make(map[string]Item)
	for _, col := range columns {
		for _, it := range col.Items {
			for _, name := range []string{it.Name, it.DisplayName} {
				if name == "" {
					continue
				}
				key := strings.ToLower(name)
				if _, taken := resolve[key]; !taken {
					resolve[key] = it
				}
			}
		}
	}

	var edges []Edge
	for ci, col := range columns {
		if ci == 0 {
			continue
		}
		for _, it := range col.Items {
			resolved := false
			for _, ref := range it.DependsOn {
				dep, ok := resolve[strings.ToLower(ref)]
				if !ok || strings.EqualFold(dep.Name, it.Name) {
					continue
				}
				edges = append(edges, Edge{From: dep.Label(), To: it.Label()})
				resolved = true
			}
			if !resolved {
				for _, prev := range columns[ci-1].Items {
					edges = append(edges, Edge{From: prev.Label(), To: it.Label()})
				}
			}
		}
	}
	return edges
}
