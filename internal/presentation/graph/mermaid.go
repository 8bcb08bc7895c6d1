package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/macrograph/pkg/domain"
)

// GraphOverlay contains run state to visualize on the graph.
type GraphOverlay struct {
	// ExecutedNodes are node indices in evaluation order.
	ExecutedNodes []int
	// FailedNode is the node whose evaluation returned the run's error, or -1.
	FailedNode int
}

// GenerateMermaid produces a Mermaid flowchart of a macro graph.
// It applies semantic styling:
// - Start: ((Circle))
// - Action: (Rounded)
// - Getter: [Rectangle]
// - Macro input: [/Parallelogram/]
// Flow links are solid arrows; data links are dotted and labeled with the output
// and input ids they connect. Overlay styles are applied if provided.
func GenerateMermaid(g domain.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i, in := range g.Inputs {
		sb.WriteString(fmt.Sprintf("    %s[/\"%s: %s\"/]\n", inputID(i), escape(in.Parameter), in.Type))
	}

	for i, node := range g.Nodes {
		opener, closer := "[", "]"
		kind, known := domain.ParseKind(node.Kind)
		switch {
		case kind == domain.KindStart:
			opener, closer = "((", "))"
		case known && kind.IsAction():
			opener, closer = "(", ")"
		}

		label := escape(node.Kind)
		if lits := literals(node.Inputs); lits != "" {
			label += "<br/>" + lits
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", nodeID(i), opener, label, closer))
	}

	for i, node := range g.Nodes {
		if node.OutFlow != nil {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", nodeID(i), nodeID(*node.OutFlow)))
		}
		for _, s := range node.Inputs {
			switch b := s.Binding.(type) {
			case domain.NodeRef:
				sb.WriteString(fmt.Sprintf("    %s -. \"%s → %s\" .-> %s\n", nodeID(b.Node), escape(b.Output), escape(s.ID), nodeID(i)))
			case domain.InputRef:
				sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n", inputID(b.Index), escape(s.ID), nodeID(i)))
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on light fills in both themes
		sb.WriteString("    classDef executed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:4px,color:#000;\n")

		seen := make(map[int]bool)
		for _, idx := range overlay.ExecutedNodes {
			if seen[idx] || idx == overlay.FailedNode {
				continue
			}
			seen[idx] = true
			sb.WriteString(fmt.Sprintf("    class %s executed;\n", nodeID(idx)))
		}
		if overlay.FailedNode >= 0 {
			sb.WriteString(fmt.Sprintf("    class %s failed;\n", nodeID(overlay.FailedNode)))
		}
	}

	return sb.String()
}

func nodeID(i int) string  { return fmt.Sprintf("n%d", i) }
func inputID(i int) string { return fmt.Sprintf("in%d", i) }

func literals(sockets []domain.ValueSocket) string {
	var parts []string
	for _, s := range sockets {
		if lit, ok := s.Binding.(domain.Literal); ok {
			parts = append(parts, fmt.Sprintf("%s=%s", escape(s.ID), escape(lit.Value)))
		}
	}
	return strings.Join(parts, " ")
}

// escape replaces characters that break a quoted Mermaid label.
func escape(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
