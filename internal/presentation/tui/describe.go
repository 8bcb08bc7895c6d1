package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/macrograph/pkg/domain"
)

// DescribeMacro renders a macro as a Markdown document: its inputs, the
// activation phrases with their example arguments and the node list.
func DescribeMacro(m *domain.Macro) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", m.Name)
	if !m.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "_Created %s_\n\n", m.CreatedAt.Format("2006-01-02 15:04 MST"))
	}

	sb.WriteString("## Inputs\n\n")
	if len(m.Graph.Inputs) == 0 {
		sb.WriteString("None.\n\n")
	} else {
		for i, in := range m.Graph.Inputs {
			fmt.Fprintf(&sb, "%d. `%s` (%s)\n", i, in.Parameter, in.Type)
		}
		sb.WriteString("\n")
	}

	if len(m.ActivationPhrases) > 0 {
		sb.WriteString("## Activation phrases\n\n")
		sb.WriteString("| Phrase | Arguments |\n|---|---|\n")
		for i, p := range m.ActivationPhrases {
			args := ""
			if i < len(m.Actions) {
				args = "`" + m.Actions[i] + "`"
			}
			fmt.Fprintf(&sb, "| %s | %s |\n", cell(p), cell(args))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Nodes\n\n")
	for i, n := range m.Graph.Nodes {
		fmt.Fprintf(&sb, "- **%d** `%s`", i, n.Kind)
		if n.OutFlow != nil {
			fmt.Fprintf(&sb, " → %d", *n.OutFlow)
		}
		for _, s := range n.Inputs {
			fmt.Fprintf(&sb, "\n  - %s: %s", s.ID, binding(s.Binding))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func binding(b domain.Binding) string {
	switch b := b.(type) {
	case domain.Literal:
		return fmt.Sprintf("`%s`", b.Value)
	case domain.InputRef:
		return fmt.Sprintf("input %d", b.Index)
	case domain.NodeRef:
		return fmt.Sprintf("node %d `%s`", b.Node, b.Output)
	}
	return "_unbound_"
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
