package catalog

import "github.com/dcversus/prp-sub007/internal/orchestrator"

// lintGraph walks the transition graph and reports advisory findings:
// states unreachable from the start state and end states no path reaches.
// Lint never rejects a definition; the hard rules live in Validate.
func lintGraph(def *orchestrator.WorkflowDefinition) []string {
	start, ok := def.StartState()
	if !ok {
		return nil
	}

	children := make(map[string][]string)
	for _, t := range def.Transitions {
		children[t.From] = append(children[t.From], t.To)
	}
	// Decision options and parallel branches advance without transitions.
	for _, s := range def.States {
		for _, opt := range s.DecisionOptions {
			children[s.ID] = append(children[s.ID], opt.TargetState)
		}
		for _, br := range s.ParallelBranches {
			children[s.ID] = append(children[s.ID], br.States...)
		}
	}

	reached := make(map[string]bool)
	queue := []string{start.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if reached[id] {
			continue
		}
		reached[id] = true
		queue = append(queue, children[id]...)
	}

	var warnings []string
	endReached := false
	for _, s := range def.States {
		if !reached[s.ID] {
			warnings = append(warnings, "state "+s.ID+" unreachable from start")
			continue
		}
		if s.Type == orchestrator.StateTypeEnd {
			endReached = true
		}
	}
	if !endReached {
		warnings = append(warnings, "no end state reachable from start")
	}
	return warnings
}
