package condition

import (
	"testing"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

func testSignal() *orchestrator.Signal {
	sig := orchestrator.NewSignal("bb", "ci", map[string]any{
		"blocker_description": "build broken",
		"attempts":            3,
	})
	sig.Metadata = map[string]any{"repo": "core"}
	sig.Priority = 9
	return sig
}

func TestResolveField(t *testing.T) {
	sig := testSignal()
	prp := &orchestrator.PRP{ID: "prp-7", Name: "hotfix", Content: "step one"}

	cases := []struct {
		field string
		want  any
		found bool
	}{
		{"data.blocker_description", "build broken", true},
		{"data.missing", nil, false},
		{"metadata.repo", "core", true},
		{"metadata.none", nil, false},
		{"prp.id", "prp-7", true},
		{"prp.content", "step one", true},
		{"prp.unknown", nil, false},
		{"type", "bb", true},
		{"source", "ci", true},
		{"priority", 9, true},
		{"nonsense", nil, false},
	}
	for _, tc := range cases {
		got, found := ResolveField(tc.field, sig, prp)
		if found != tc.found {
			t.Errorf("ResolveField(%q) found = %v, want %v", tc.field, found, tc.found)
			continue
		}
		if found && got != tc.want {
			t.Errorf("ResolveField(%q) = %v, want %v", tc.field, got, tc.want)
		}
	}
}

func TestResolveFieldNilSignal(t *testing.T) {
	if _, found := ResolveField("data.x", nil, nil); found {
		t.Error("nil signal should not resolve")
	}
}

func TestCompareOperators(t *testing.T) {
	sig := testSignal()

	cases := []struct {
		name string
		cond orchestrator.ActionCondition
		want bool
	}{
		{"equals", orchestrator.ActionCondition{Field: "type", Operator: orchestrator.OpEquals, Value: "bb"}, true},
		{"equals miss", orchestrator.ActionCondition{Field: "type", Operator: orchestrator.OpEquals, Value: "pr"}, false},
		{"contains", orchestrator.ActionCondition{Field: "data.blocker_description", Operator: orchestrator.OpContains, Value: "broken"}, true},
		{"greater_than", orchestrator.ActionCondition{Field: "data.attempts", Operator: orchestrator.OpGreaterThan, Value: 2}, true},
		{"less_than", orchestrator.ActionCondition{Field: "data.attempts", Operator: orchestrator.OpLessThan, Value: 2}, false},
		{"exists", orchestrator.ActionCondition{Field: "data.blocker_description", Operator: orchestrator.OpExists}, true},
		{"not_exists hit", orchestrator.ActionCondition{Field: "data.ghost", Operator: orchestrator.OpNotExists}, true},
		{"not_exists miss", orchestrator.ActionCondition{Field: "data.attempts", Operator: orchestrator.OpNotExists}, false},
		{"unknown operator", orchestrator.ActionCondition{Field: "type", Operator: "regex", Value: ".*"}, false},
	}
	for _, tc := range cases {
		if got := Compare(tc.cond, sig, nil); got != tc.want {
			t.Errorf("%s: Compare = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAllEmptyIsTrue(t *testing.T) {
	if !All(nil, testSignal(), nil) {
		t.Error("empty condition list must hold")
	}
}

func TestAllIsConjunction(t *testing.T) {
	sig := testSignal()
	conds := []orchestrator.ActionCondition{
		{Field: "type", Operator: orchestrator.OpEquals, Value: "bb"},
		{Field: "data.ghost", Operator: orchestrator.OpExists},
	}
	if All(conds, sig, nil) {
		t.Error("one failing condition must fail the set")
	}
}
