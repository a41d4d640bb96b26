// Package integration is the outer signal layer: it matches incoming
// signals against workflow triggers, relays them into waiting executions,
// and falls back to the signal resolution engine.
package integration

import (
	"context"
	"log/slog"
	"sort"

	"github.com/dcversus/prp-sub007/internal/catalog"
	"github.com/dcversus/prp-sub007/internal/condition"
	"github.com/dcversus/prp-sub007/internal/engine"
	"github.com/dcversus/prp-sub007/internal/orchestrator"
	"github.com/dcversus/prp-sub007/internal/resolution"
)

// RouteResult describes what a routed signal did.
type RouteResult struct {
	StartedExecution string                         `json:"started_execution,omitempty"`
	StartedWorkflow  string                         `json:"started_workflow,omitempty"`
	DeliveredTo      []string                       `json:"delivered_to,omitempty"`
	Resolution       *orchestrator.ResolutionResult `json:"resolution,omitempty"`
}

// Router fans incoming signals into the two engines.
type Router struct {
	catalog  *catalog.Catalog
	engine   *engine.Engine
	resolver *resolution.Engine
	eval     *condition.Evaluator
}

func NewRouter(cat *catalog.Catalog, eng *engine.Engine, resolver *resolution.Engine, eval *condition.Evaluator) *Router {
	return &Router{catalog: cat, engine: eng, resolver: resolver, eval: eval}
}

// Route processes one signal: the highest-priority matching workflow
// trigger starts a workflow; executions idling on a matching wait event
// get the signal delivered; otherwise the resolution engine handles it.
func (r *Router) Route(ctx context.Context, sig *orchestrator.Signal, prp *orchestrator.PRP) (*RouteResult, error) {
	result := &RouteResult{}

	// Relay into waiting executions first: a signal can both unblock a
	// wait state and still be resolution-worthy.
	running, err := r.engine.ListExecutions(ctx)
	if err != nil {
		return nil, err
	}
	for _, exec := range running {
		if exec.Status != orchestrator.ExecutionRunning {
			continue
		}
		matched, derr := r.engine.DeliverSignal(ctx, exec.ID, sig)
		if derr != nil {
			slog.Warn("signal delivery failed", "execution", exec.ID, "signal", sig.ID, "err", derr)
			continue
		}
		if matched {
			result.DeliveredTo = append(result.DeliveredTo, exec.ID)
		}
	}

	if def, trigger := r.matchTrigger(ctx, sig, prp); def != nil {
		execID, serr := r.engine.StartWorkflow(ctx, def.ID, orchestrator.ContextSeed{Signal: sig, PRP: prp}, map[string]any{
			"trigger_id":  trigger.ID,
			"signal_id":   sig.ID,
			"signal_type": sig.Type,
		})
		if serr != nil {
			return nil, serr
		}
		result.StartedExecution = execID
		result.StartedWorkflow = def.ID
		return result, nil
	}

	if len(result.DeliveredTo) > 0 {
		return result, nil
	}

	result.Resolution = r.resolver.ProcessSignal(ctx, sig, prp)
	return result, nil
}

// matchTrigger returns the definition and trigger of the highest-priority
// enabled signal trigger matching sig, or nil when none match.
func (r *Router) matchTrigger(ctx context.Context, sig *orchestrator.Signal, prp *orchestrator.PRP) (*orchestrator.WorkflowDefinition, *orchestrator.WorkflowTrigger) {
	defs, err := r.catalog.List(ctx)
	if err != nil {
		return nil, nil
	}

	type match struct {
		def     *orchestrator.WorkflowDefinition
		trigger orchestrator.WorkflowTrigger
	}
	var matches []match

	env := condition.Env(sig, prp, nil)
	for _, def := range defs {
		for _, trigger := range def.Triggers {
			if trigger.Type != "signal" || !trigger.Enabled || trigger.SignalType != sig.Type {
				continue
			}
			if trigger.Condition != "" {
				ok, cerr := r.eval.Evaluate(trigger.Condition, env)
				if cerr != nil {
					slog.Warn("trigger condition error", "workflow", def.ID, "trigger", trigger.ID, "err", cerr)
					continue
				}
				if !ok {
					continue
				}
			}
			matches = append(matches, match{def: def, trigger: trigger})
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].trigger.Priority > matches[j].trigger.Priority
	})
	best := matches[0]
	return best.def, &best.trigger
}
