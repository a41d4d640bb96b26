package condition

import (
	"fmt"
	"strings"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

// ResolveField reads a field from a signal or PRP using the addressing
// scheme: "data.<key>", "metadata.<key>", "prp.<field>", or a bare signal
// field name. found is false when the path does not resolve.
func ResolveField(field string, signal *orchestrator.Signal, prp *orchestrator.PRP) (value any, found bool) {
	switch {
	case strings.HasPrefix(field, "data."):
		if signal == nil || signal.Data == nil {
			return nil, false
		}
		v, ok := signal.Data[strings.TrimPrefix(field, "data.")]
		return v, ok
	case strings.HasPrefix(field, "metadata."):
		if signal == nil || signal.Metadata == nil {
			return nil, false
		}
		v, ok := signal.Metadata[strings.TrimPrefix(field, "metadata.")]
		return v, ok
	case strings.HasPrefix(field, "prp."):
		if prp == nil {
			return nil, false
		}
		switch strings.TrimPrefix(field, "prp.") {
		case "id":
			return prp.ID, true
		case "name":
			return prp.Name, true
		case "content":
			return prp.Content, true
		}
		return nil, false
	default:
		if signal == nil {
			return nil, false
		}
		switch field {
		case "id":
			return signal.ID, true
		case "type":
			return signal.Type, true
		case "source":
			return signal.Source, true
		case "priority":
			return signal.Priority, true
		}
		return nil, false
	}
}

// Compare applies a single action condition against the signal and PRP.
func Compare(cond orchestrator.ActionCondition, signal *orchestrator.Signal, prp *orchestrator.PRP) bool {
	value, found := ResolveField(cond.Field, signal, prp)

	switch cond.Operator {
	case orchestrator.OpExists:
		return found && value != nil
	case orchestrator.OpNotExists:
		return !found || value == nil
	case orchestrator.OpEquals:
		return found && fmt.Sprint(value) == fmt.Sprint(cond.Value)
	case orchestrator.OpContains:
		return found && strings.Contains(fmt.Sprint(value), fmt.Sprint(cond.Value))
	case orchestrator.OpGreaterThan:
		a, aok := toFloat(value)
		b, bok := toFloat(cond.Value)
		return found && aok && bok && a > b
	case orchestrator.OpLessThan:
		a, aok := toFloat(value)
		b, bok := toFloat(cond.Value)
		return found && aok && bok && a < b
	default:
		return false
	}
}

// All reports whether every condition holds (AND). An empty list is true.
func All(conds []orchestrator.ActionCondition, signal *orchestrator.Signal, prp *orchestrator.PRP) bool {
	for _, c := range conds {
		if !Compare(c, signal, prp) {
			return false
		}
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
