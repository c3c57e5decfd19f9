package procedure

// EdgeKind distinguishes linear flow from answer branches.
type EdgeKind int

const (
	Sequential EdgeKind = iota
	Branch
)

// Edge is a directed link between two items in the process map.
type Edge struct {
	From  int
	To    int // -1 when dangling
	Kind  EdgeKind
	Label string
}

// Dangling reports whether the edge's target could not be resolved.
func (e Edge) Dangling() bool {
	return e.To < 0
}

// Edges derives process-map edges. Steps link to their successor; decisions
// with answers link through each answer instead, and a decision without
// answers falls through to its successor.
func Edges(items []Item) []Edge {
	var edges []Edge
	for i, it := range items {
		if it.Kind == End {
			continue
		}
		if !it.HasAnswers() {
			if i+1 < len(items) {
				edges = append(edges, Edge{From: i, To: i + 1, Kind: Sequential})
			}
			continue
		}
		for _, ans := range it.Answers {
			to, ok := Resolve(ans, items)
			if !ok {
				to = -1
			}
			edges = append(edges, Edge{From: i, To: to, Kind: Branch, Label: ans.Text})
		}
	}
	return edges
}

// Outgoing returns the edges leaving item i.
func Outgoing(edges []Edge, i int) []Edge {
	var out []Edge
	for _, e := range edges {
		if e.From == i {
			out = append(out, e)
		}
	}
	return out
}
