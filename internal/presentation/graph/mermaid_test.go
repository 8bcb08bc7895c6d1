package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/macrograph/internal/presentation/graph"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/ports"
)

func TestGenerateMermaid(t *testing.T) {
	macro := ports.ContractMacro("lift")

	tests := []struct {
		name     string
		graph    domain.Graph
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name:  "Node Shapes",
			graph: macro.Graph,
			contains: []string{
				`in0[/"obj: int"/]`,
				`n0(("Start"))`,
				`n1("SetPosition")`,
				`n2["Float3<br/>x=0 y=1.5 z=0"]`,
			},
		},
		{
			name:  "Links",
			graph: macro.Graph,
			contains: []string{
				"n0 --> n1",
				`n2 -. "value → position" .-> n1`,
				`in0 -. "objectIndex" .-> n1`,
			},
		},
		{
			name: "Unknown Kind And Escaping",
			graph: domain.Graph{Nodes: []domain.NodeDescriptor{
				{Kind: "Teleport", Inputs: []domain.ValueSocket{
					domain.LiteralSocket("where", domain.ValueTypeFloat, `"home"`),
				}},
			}},
			contains: []string{
				`n0["Teleport<br/>where='home'"]`,
			},
		},
		{
			name:    "Overlay",
			graph:   macro.Graph,
			overlay: &graph.GraphOverlay{ExecutedNodes: []int{0, 2, 1}, FailedNode: 1},
			contains: []string{
				"class n0 executed;",
				"class n2 executed;",
				"class n1 failed;",
			},
			excludes: []string{
				"class n1 executed;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.graph, tt.overlay)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Errorf("GenerateMermaid() missing header:\n%v", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnwanted substring: %v", got, unwanted)
				}
			}
		})
	}
}
