package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/knots/pkg/domain"
)

// Overlay contains analysis and session data to visualize on the graph.
type Overlay struct {
	Visited []domain.Position
	Current *domain.Position
	Issues  *domain.AnalysisResult
}

// GenerateMermaid produces a Mermaid flowchart of the story. Each knot is a
// subgraph. Node shapes:
// - Story entry: ((Circle))
// - Ending: ([Stadium])
// - Default: [Rectangle]
// Edges leaving the knot are dotted; guarded edges carry the condition in
// their label. Targets that do not exist are drawn as missing hexagons.
func GenerateMermaid[E any](story *domain.Story[E], overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	entry := story.EntryPosition()
	missing := make(map[domain.Position]bool)
	known := make(map[string]bool)
	var edges []string

	for _, knotID := range sortedKeys(story.Knots) {
		knot := story.Knots[knotID]
		sb.WriteString(fmt.Sprintf("    subgraph %s[\"%s\"]\n", sanitizeMermaidID("knot_"+knotID), escapeLabel(knotID)))

		for _, nodeID := range sortedKeys(knot.Nodes) {
			node := knot.Nodes[nodeID]
			pos := domain.Position{KnotID: knotID, NodeID: nodeID}
			safeID := nodeRef(pos)
			known[safeID] = true

			opener, closer := "[", "]"
			label := nodeID
			switch {
			case pos == entry:
				opener, closer = "((", "))"
			case node.Ending != nil:
				opener, closer = "([", "])"
				if node.Ending.Label != "" {
					label = fmt.Sprintf("%s <br/> %s", nodeID, node.Ending.Label)
				}
			}
			sb.WriteString(fmt.Sprintf("        %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer))

			for _, c := range node.Choices {
				dest := c.Target.Resolve(knotID)
				if _, ok := story.Node(dest.KnotID, dest.NodeID); !ok {
					missing[dest] = true
				}
				edges = append(edges, edge(safeID, nodeRef(dest), c, dest.KnotID != knotID))
			}
		}
		sb.WriteString("    end\n")
	}

	if len(missing) > 0 {
		keys := make([]domain.Position, 0, len(missing))
		for p := range missing {
			keys = append(keys, p)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].Key() < keys[j].Key() })
		for _, p := range keys {
			sb.WriteString(fmt.Sprintf("    %s{{\"missing: %s\"}}\n", nodeRef(p), escapeLabel(p.String())))
		}
	}

	for _, e := range edges {
		sb.WriteString(e)
	}

	if len(missing) > 0 {
		sb.WriteString("    classDef missing fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4 2,color:#000;\n")
		refs := make([]string, 0, len(missing))
		for p := range missing {
			refs = append(refs, nodeRef(p))
		}
		sort.Strings(refs)
		sb.WriteString(fmt.Sprintf("    class %s missing;\n", strings.Join(refs, ",")))
	}

	if overlay != nil {
		writeOverlay(&sb, overlay, known)
	}

	return sb.String()
}

func edge[E any](from, to string, c domain.Choice[E], jump bool) string {
	label := c.Label
	if label == "" {
		label = c.ID
	}
	if c.Condition != nil {
		label = fmt.Sprintf("%s [%s]", label, c.Condition.String())
	}
	label = escapeLabel(label)

	arrow := fmt.Sprintf("-- \"%s\" -->", label)
	if jump {
		arrow = fmt.Sprintf("-. \"%s\" .->", label)
	}
	return fmt.Sprintf("    %s %s %s\n", from, arrow, to)
}

// writeOverlay styles known nodes only; issue keys for absent nodes are skipped.
func writeOverlay(sb *strings.Builder, overlay *Overlay, known map[string]bool) {
	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text for high contrast on light fills regardless of theme.
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	sb.WriteString("    classDef unreachable fill:#f5f5f5,stroke:#757575,stroke-dasharray:5 5,color:#000;\n")
	sb.WriteString("    classDef deadend fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef loop fill:#ffe0b2,stroke:#ef6c00,stroke-width:2px,color:#000;\n")

	if overlay.Issues != nil {
		for _, issue := range overlay.Issues.Issues {
			class := issueClass(issue.Kind)
			members := issue.PathExample
			if issue.Kind == domain.IssueInescapableLoop {
				members = issue.SCC
			}
			for _, key := range members {
				knotID, nodeID := domain.SplitKey(key)
				ref := nodeRef(domain.Position{KnotID: knotID, NodeID: nodeID})
				if known[ref] {
					sb.WriteString(fmt.Sprintf("    class %s %s;\n", ref, class))
				}
			}
		}
	}

	seen := make(map[string]bool)
	for _, p := range overlay.Visited {
		ref := nodeRef(p)
		if known[ref] && !seen[ref] {
			seen[ref] = true
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", ref))
		}
	}

	if overlay.Current != nil && known[nodeRef(*overlay.Current)] {
		sb.WriteString(fmt.Sprintf("    class %s current;\n", nodeRef(*overlay.Current)))
	}
}

func issueClass(kind domain.IssueKind) string {
	switch kind {
	case domain.IssueDeadEnd:
		return "deadend"
	case domain.IssueInescapableLoop:
		return "loop"
	default:
		return "unreachable"
	}
}

func nodeRef(p domain.Position) string {
	return sanitizeMermaidID(p.KnotID + "__" + p.NodeID)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
