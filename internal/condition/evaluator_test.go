package condition

import (
	"testing"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

func TestEvaluateEmptyExpressionIsTrue(t *testing.T) {
	e := New()
	ok, err := e.Evaluate("  ", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("empty expression should be true")
	}
}

func TestEvaluateBooleanExpressions(t *testing.T) {
	e := New()
	env := map[string]any{
		"severity": "critical",
		"count":    3,
	}

	cases := []struct {
		expr string
		want bool
	}{
		{`severity == "critical"`, true},
		{`severity == "low"`, false},
		{`count > 2`, true},
		{`count > 10`, false},
		{`severity == "critical" && count > 2`, true},
	}
	for _, tc := range cases {
		got, err := e.Evaluate(tc.expr, env)
		if err != nil {
			t.Fatalf("Evaluate(%q): %v", tc.expr, err)
		}
		if got != tc.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tc.expr, got, tc.want)
		}
	}
}

// Variables named like expr builtins must resolve to the variable, not the
// builtin function.
func TestEvaluateBuiltinNamedVariables(t *testing.T) {
	e := New()
	env := map[string]any{
		"count":  5,
		"type":   "pr",
		"len":    2,
		"filter": "urgent",
	}

	cases := []struct {
		expr string
		want bool
	}{
		{`count > 2`, true},
		{`type == "pr"`, true},
		{`len == 2`, true},
		{`filter == "urgent"`, true},
		{`count > 2 && filter != ""`, true},
	}
	for _, tc := range cases {
		got, err := e.Evaluate(tc.expr, env)
		if err != nil {
			t.Fatalf("Evaluate(%q): %v", tc.expr, err)
		}
		if got != tc.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestEvaluateUndefinedVariableIsFalsy(t *testing.T) {
	e := New()
	ok, err := e.Evaluate("missing_field", map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("undefined variable should evaluate falsy")
	}
}

func TestEvaluateCompileError(t *testing.T) {
	e := New()
	ok, err := e.Evaluate("((", nil)
	if err == nil {
		t.Fatal("expected compile error")
	}
	if ok {
		t.Error("result must be false on error")
	}
}

func TestEvaluateTruthyNonBoolean(t *testing.T) {
	e := New()
	env := map[string]any{"name": "review"}
	ok, err := e.Evaluate("name", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("non-empty string should be truthy")
	}
}

func TestEnvVariablesShadowSignalFields(t *testing.T) {
	sig := orchestrator.NewSignal("pr", "git", map[string]any{"branch": "main"})
	env := Env(sig, nil, map[string]any{"data": "overridden"})
	if env["data"] != "overridden" {
		t.Errorf("variables should win on collision, got %v", env["data"])
	}
}

func TestEnvIncludesPRP(t *testing.T) {
	prp := &orchestrator.PRP{ID: "prp-1", Name: "release", Content: "plan"}
	env := Env(nil, prp, nil)
	fields, ok := env["prp"].(map[string]any)
	if !ok {
		t.Fatal("prp missing from env")
	}
	if fields["name"] != "release" {
		t.Errorf("prp.name = %v", fields["name"])
	}
}
