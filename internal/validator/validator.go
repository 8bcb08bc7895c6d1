package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/macrograph/internal/runtime"
	"github.com/aretw0/macrograph/pkg/domain"
)

// Severity ranks an Issue. Errors make execution fail or misbehave; warnings are suspicious.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding of the linter. Node is -1 for graph-level findings.
type Issue struct {
	Severity Severity `json:"severity"`
	Node     int      `json:"node"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Node < 0 {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: node %d: %s", i.Severity, i.Node, i.Message)
}

// Report collects the findings of ValidateGraph in discovery order.
type Report struct {
	Issues []Issue `json:"issues"`
}

// Errors returns the issues of error severity.
func (r Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the issues of warning severity.
func (r Report) Warnings() []Issue { return r.filter(SeverityWarning) }

// HasErrors reports whether the graph should be rejected.
func (r Report) HasErrors() bool { return len(r.Errors()) > 0 }

// Err folds the error-severity issues into a single error, or returns nil.
func (r Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, issue := range errs {
		lines[i] = issue.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(lines, "\n- "))
}

func (r Report) filter(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

type linter struct {
	g      domain.Graph
	kinds  []domain.NodeKind // KindInvalid for unknown tags
	report Report
}

func (l *linter) add(s Severity, node int, format string, args ...any) {
	l.report.Issues = append(l.report.Issues, Issue{Severity: s, Node: node, Message: fmt.Sprintf(format, args...)})
}

// ValidateGraph lints a graph beyond what the engine checks at build time.
func ValidateGraph(g domain.Graph) Report {
	l := &linter{g: g, kinds: make([]domain.NodeKind, len(g.Nodes))}

	for i, n := range g.Nodes {
		kind, ok := domain.ParseKind(n.Kind)
		if !ok {
			l.add(SeverityError, i, "unknown node kind %q", n.Kind)
		}
		l.kinds[i] = kind
	}

	l.checkStart()
	for i := range g.Nodes {
		l.checkFlow(i)
		l.checkSockets(i)
	}
	l.checkFlowCycles()
	l.checkDataCycles()
	l.checkReachability()
	return l.report
}

func (l *linter) checkStart() {
	var starts []int
	for i, k := range l.kinds {
		if k == domain.KindStart {
			starts = append(starts, i)
		}
	}
	switch {
	case len(starts) == 0:
		l.add(SeverityError, -1, "graph has no Start node")
	case len(starts) > 1:
		l.add(SeverityWarning, -1, "graph has %d Start nodes, only node %d runs", len(starts), starts[0])
	}
}

func (l *linter) checkFlow(i int) {
	next := l.g.Nodes[i].OutFlow
	if next == nil {
		return
	}
	if *next < 0 || *next >= len(l.g.Nodes) {
		l.add(SeverityError, i, "outFlow %d out of range", *next)
		return
	}
	if k := l.kinds[*next]; k != domain.KindInvalid && !k.IsAction() {
		l.add(SeverityError, i, "outFlow targets node %d (%s), which is not an action", *next, k)
	}
	if l.kinds[i].IsGetter() {
		l.add(SeverityWarning, i, "getter %s has an outFlow, which runs whenever the getter is pulled", l.kinds[i])
	}
}

func (l *linter) checkSockets(i int) {
	kind := l.kinds[i]
	spec, known := kind.Spec()
	bound := make(map[string]bool, len(l.g.Nodes[i].Inputs))

	for _, s := range l.g.Nodes[i].Inputs {
		bound[s.ID] = true
		if known {
			port, declared := findPort(spec.Inputs, s.ID)
			switch {
			case !declared:
				l.add(SeverityWarning, i, "socket %q is not an input of %s", s.ID, kind)
			case port.Type != s.Type:
				l.add(SeverityWarning, i, "socket %q is typed %s, %s expects %s", s.ID, s.Type, kind, port.Type)
			}
		}
		l.checkBinding(i, s)
	}

	if !known {
		return
	}
	for _, p := range spec.Inputs {
		if !bound[p.ID] {
			l.add(SeverityWarning, i, "input %q of %s is not bound", p.ID, kind)
		}
	}
}

func (l *linter) checkBinding(i int, s domain.ValueSocket) {
	switch b := s.Binding.(type) {
	case nil:
		l.add(SeverityWarning, i, "socket %q has no binding and resolves to nothing", s.ID)

	case domain.Literal:
		switch s.Type {
		case domain.ValueTypeInt:
			if _, ok := runtime.ParseIntPrefix(b.Value); !ok {
				l.add(SeverityError, i, "socket %q: literal %q is not an int", s.ID, b.Value)
			}
		case domain.ValueTypeFloat:
			if _, ok := runtime.ParseFloatPrefix(b.Value); !ok {
				l.add(SeverityError, i, "socket %q: literal %q is not a float", s.ID, b.Value)
			}
		default:
			l.add(SeverityError, i, "socket %q: %s values cannot be literals", s.ID, s.Type)
		}

	case domain.InputRef:
		if b.Index < 0 || b.Index >= len(l.g.Inputs) {
			l.add(SeverityError, i, "socket %q: inputIndex %d out of range", s.ID, b.Index)
			return
		}
		if in := l.g.Inputs[b.Index]; in.Type != s.Type {
			l.add(SeverityWarning, i, "socket %q is typed %s, input %q is %s", s.ID, s.Type, in.Parameter, in.Type)
		}

	case domain.NodeRef:
		if b.Node < 0 || b.Node >= len(l.g.Nodes) {
			l.add(SeverityError, i, "socket %q: referencedNodeId %d out of range", s.ID, b.Node)
			return
		}
		target := l.kinds[b.Node]
		if target == domain.KindInvalid {
			return
		}
		if !target.IsGetter() {
			l.add(SeverityError, i, "socket %q references node %d (%s), which is not a getter", s.ID, b.Node, target)
			return
		}
		spec, _ := target.Spec()
		out, ok := spec.Output(b.Output)
		if !ok {
			l.add(SeverityError, i, "socket %q references unknown output %q of %s", s.ID, b.Output, target)
			return
		}
		if out.Type != s.Type {
			l.add(SeverityWarning, i, "socket %q is typed %s, output %q of node %d is %s", s.ID, s.Type, b.Output, b.Node, out.Type)
		}
	}
}

func findPort(ports []domain.Port, id string) (domain.Port, bool) {
	for _, p := range ports {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Port{}, false
}

// checkFlowCycles reports each outFlow loop once, at its lowest node index.
func (l *linter) checkFlowCycles() {
	n := len(l.g.Nodes)
	reported := make(map[int]bool)
	for i := 0; i < n; i++ {
		seen := map[int]bool{}
		cur := i
		for {
			seen[cur] = true
			next := l.g.Nodes[cur].OutFlow
			if next == nil || *next < 0 || *next >= n {
				break
			}
			cur = *next
			if cur == i {
				if !reported[i] {
					l.markCycle(i, reported)
					l.add(SeverityError, i, "outFlow cycle through node %d", i)
				}
				break
			}
			if seen[cur] {
				break
			}
		}
	}
}

func (l *linter) markCycle(start int, reported map[int]bool) {
	cur := start
	for {
		reported[cur] = true
		cur = *l.g.Nodes[cur].OutFlow
		if cur == start {
			return
		}
	}
}

// checkDataCycles finds NodeRef cycles with a depth-first search.
// Each back edge is reported once, at the node whose socket closes the cycle.
func (l *linter) checkDataCycles() {
	const (
		white = iota
		grey
		black
	)
	n := len(l.g.Nodes)
	color := make([]int, n)

	var visit func(i int)
	visit = func(i int) {
		color[i] = grey
		for _, s := range l.g.Nodes[i].Inputs {
			ref, ok := s.Binding.(domain.NodeRef)
			if !ok || ref.Node < 0 || ref.Node >= n {
				continue
			}
			switch color[ref.Node] {
			case grey:
				l.add(SeverityError, i, "data cycle: socket %q depends on node %d", s.ID, ref.Node)
			case white:
				visit(ref.Node)
			}
		}
		color[i] = black
	}

	for i := 0; i < n; i++ {
		if color[i] == white {
			visit(i)
		}
	}
}

// checkReachability warns about actions that no flow from the first Start reaches.
func (l *linter) checkReachability() {
	start := -1
	for i, k := range l.kinds {
		if k == domain.KindStart {
			start = i
			break
		}
	}
	if start < 0 {
		return
	}

	reached := map[int]bool{}
	for cur := start; !reached[cur]; {
		reached[cur] = true
		next := l.g.Nodes[cur].OutFlow
		if next == nil || *next < 0 || *next >= len(l.g.Nodes) {
			break
		}
		cur = *next
	}

	for i, k := range l.kinds {
		if k.IsAction() && k != domain.KindStart && !reached[i] {
			l.add(SeverityWarning, i, "action %s is not reachable from Start", k)
		}
	}
}
