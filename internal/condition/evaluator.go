// Package condition evaluates boolean expressions and field comparisons
// over a restricted context: signal fields, PRP fields, and workflow
// variables. String conditions are compiled by expr-lang into a sandboxed
// program; no dynamic code is ever built from catalog input.
package condition

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

// Evaluator compiles and runs condition expressions. Programs are compiled
// against the concrete environment of each call: binding identifiers to the
// env map keeps variables named like expr builtins (count, len, filter)
// resolving to the variable, and typing depends on the env values, so
// compiled programs are not reusable across calls.
type Evaluator struct{}

// New creates an Evaluator.
func New() *Evaluator {
	return &Evaluator{}
}

// Env builds the evaluation environment from a signal, a PRP document, and
// workflow variables. Variables win on key collisions so workflows can
// shadow signal fields deliberately.
func Env(signal *orchestrator.Signal, prp *orchestrator.PRP, variables map[string]any) map[string]any {
	env := make(map[string]any)
	if signal != nil {
		env["signal"] = map[string]any{
			"id":       signal.ID,
			"type":     signal.Type,
			"source":   signal.Source,
			"priority": signal.Priority,
		}
		env["data"] = signal.Data
		env["metadata"] = signal.Metadata
	}
	if prp != nil {
		env["prp"] = map[string]any{
			"id":      prp.ID,
			"name":    prp.Name,
			"content": prp.Content,
		}
	}
	for k, v := range variables {
		env[k] = v
	}
	return env
}

// Evaluate runs a boolean expression against env. An empty expression is
// vacuously true. Compile or runtime errors are returned, with the result
// forced false.
func (e *Evaluator) Evaluate(expression string, env map[string]any) (bool, error) {
	if strings.TrimSpace(expression) == "" {
		return true, nil
	}

	// AllowUndefinedVariables lets catalogs reference fields that are absent
	// for a given signal; missing keys evaluate to nil.
	program, err := expr.Compile(expression, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return false, fmt.Errorf("compile condition %q: %w", expression, err)
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate condition %q: %w", expression, err)
	}
	return isTruthy(result), nil
}

// isTruthy converts an expression result to a boolean.
func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return true
	}
}
