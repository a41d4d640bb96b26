package catalog

import "github.com/dcversus/prp-sub007/internal/orchestrator"

// builtinWorkflows returns the stock workflow definitions seeded at
// construction. They are ordinary catalog entries: re-registering the same
// id replaces them.
func builtinWorkflows() []*orchestrator.WorkflowDefinition {
	return []*orchestrator.WorkflowDefinition{
		codeReviewWorkflow(),
		bugFixWorkflow(),
		deploymentWorkflow(),
		testingWorkflow(),
	}
}

func codeReviewWorkflow() *orchestrator.WorkflowDefinition {
	return &orchestrator.WorkflowDefinition{
		ID:       "code-review",
		Name:     "Code Review",
		Category: "review",
		Triggers: []orchestrator.WorkflowTrigger{
			{ID: "cr-on-pr", Type: "signal", SignalType: "pr", Priority: 10, Enabled: true},
		},
		Variables: []orchestrator.VariableDefinition{
			{Name: "approved", Type: "bool", Default: false},
			{Name: "iteration", Type: "int", Default: 0},
		},
		States: []orchestrator.WorkflowState{
			{ID: "cr-start", Type: orchestrator.StateTypeStart},
			{
				ID:              "cr-review",
				Type:            orchestrator.StateTypeTask,
				AgentRole:       "reviewer",
				TaskDescription: "Review the pull request diff",
				TaskInstructions: "Check correctness, style, and test coverage; " +
					"leave inline comments and set review_verdict in the execution context.",
			},
			{
				ID:   "cr-wait-verdict",
				Type: orchestrator.StateTypeWait,
				// Unblocked by the reviewer task completion callback.
				WaitCondition: "review_verdict != nil",
				WaitEvent:     "rv",
			},
			{
				ID:   "cr-verdict",
				Type: orchestrator.StateTypeDecision,
				DecisionOptions: []orchestrator.DecisionOption{
					{Condition: `review_verdict == "approved"`, TargetState: "cr-done"},
					{Condition: `review_verdict == "changes_requested"`, TargetState: "cr-rework"},
				},
			},
			{
				ID:              "cr-rework",
				Type:            orchestrator.StateTypeTask,
				AgentRole:       "developer",
				TaskDescription: "Address review comments",
			},
			{ID: "cr-done", Type: orchestrator.StateTypeEnd},
		},
		Transitions: []orchestrator.WorkflowTransition{
			{From: "cr-start", To: "cr-review", Priority: 1, Enabled: true},
			{From: "cr-review", To: "cr-wait-verdict", Priority: 1, Enabled: true},
			{From: "cr-wait-verdict", To: "cr-verdict", Priority: 1, Enabled: true},
			{From: "cr-rework", To: "cr-review", Priority: 1, Enabled: true},
		},
	}
}

func bugFixWorkflow() *orchestrator.WorkflowDefinition {
	return &orchestrator.WorkflowDefinition{
		ID:       "bug-fix",
		Name:     "Bug Fix",
		Category: "maintenance",
		Triggers: []orchestrator.WorkflowTrigger{
			{ID: "bf-on-bug", Type: "signal", SignalType: "bg", Priority: 8, Enabled: true},
		},
		Variables: []orchestrator.VariableDefinition{
			{Name: "severity", Type: "string", Default: "unknown"},
		},
		States: []orchestrator.WorkflowState{
			{ID: "bf-start", Type: orchestrator.StateTypeStart},
			{
				ID:              "bf-triage",
				Type:            orchestrator.StateTypeTask,
				AgentRole:       "analyst",
				TaskDescription: "Reproduce and triage the reported bug",
			},
			{
				ID:   "bf-severity",
				Type: orchestrator.StateTypeDecision,
				DecisionOptions: []orchestrator.DecisionOption{
					{Condition: `severity == "critical"`, TargetState: "bf-hotfix"},
					{TargetState: "bf-fix"}, // unconditional fallback
				},
			},
			{
				ID:              "bf-hotfix",
				Type:            orchestrator.StateTypeTask,
				AgentRole:       "developer",
				TaskDescription: "Ship a hotfix for the critical bug",
				EntryActions: []orchestrator.WorkflowAction{
					{Type: orchestrator.ActionNotify, Parameters: map[string]any{
						"channel": "incidents",
						"message": "critical bug hotfix in progress",
					}},
				},
			},
			{
				ID:              "bf-fix",
				Type:            orchestrator.StateTypeTask,
				AgentRole:       "developer",
				TaskDescription: "Implement a fix with a regression test",
			},
			{ID: "bf-done", Type: orchestrator.StateTypeEnd},
		},
		Transitions: []orchestrator.WorkflowTransition{
			{From: "bf-start", To: "bf-triage", Priority: 1, Enabled: true},
			{From: "bf-triage", To: "bf-severity", Priority: 1, Enabled: true},
			{From: "bf-hotfix", To: "bf-done", Priority: 1, Enabled: true},
			{From: "bf-fix", To: "bf-done", Priority: 1, Enabled: true},
		},
	}
}

func deploymentWorkflow() *orchestrator.WorkflowDefinition {
	return &orchestrator.WorkflowDefinition{
		ID:       "deployment",
		Name:     "Deployment",
		Category: "release",
		Triggers: []orchestrator.WorkflowTrigger{
			{ID: "dp-on-request", Type: "signal", SignalType: "dp", Priority: 9, Enabled: true},
		},
		States: []orchestrator.WorkflowState{
			{ID: "dp-start", Type: orchestrator.StateTypeStart},
			{
				ID:            "dp-preflight",
				Type:          orchestrator.StateTypeParallel,
				JoinCondition: orchestrator.JoinAll,
				ParallelBranches: []orchestrator.ParallelBranch{
					{ID: "checks", States: []string{"dp-lint", "dp-tests"}},
					{ID: "build", States: []string{"dp-build"}},
				},
			},
			{
				ID:              "dp-lint",
				Type:            orchestrator.StateTypeTask,
				AgentRole:       "ci",
				TaskDescription: "Run linters",
			},
			{
				ID:              "dp-tests",
				Type:            orchestrator.StateTypeTask,
				AgentRole:       "ci",
				TaskDescription: "Run the test suite",
			},
			{
				ID:              "dp-build",
				Type:            orchestrator.StateTypeTask,
				AgentRole:       "ci",
				TaskDescription: "Build the release artifact",
			},
			{
				ID:              "dp-release",
				Type:            orchestrator.StateTypeTask,
				AgentRole:       "operator",
				TaskDescription: "Promote the artifact to production",
				ExitActions: []orchestrator.WorkflowAction{
					{Type: orchestrator.ActionNotify, Parameters: map[string]any{
						"channel": "releases",
						"message": "deployment promoted",
					}},
				},
			},
			{ID: "dp-done", Type: orchestrator.StateTypeEnd},
			{ID: "dp-failed", Type: orchestrator.StateTypeError},
		},
		Transitions: []orchestrator.WorkflowTransition{
			{From: "dp-start", To: "dp-preflight", Priority: 1, Enabled: true},
			{From: "dp-preflight", To: "dp-release", Priority: 1, Enabled: true},
			{From: "dp-release", To: "dp-done", Priority: 1, Enabled: true},
		},
	}
}

func testingWorkflow() *orchestrator.WorkflowDefinition {
	return &orchestrator.WorkflowDefinition{
		ID:       "testing",
		Name:     "Testing",
		Category: "quality",
		Triggers: []orchestrator.WorkflowTrigger{
			{ID: "ts-on-request", Type: "signal", SignalType: "tr", Priority: 5, Enabled: true},
		},
		States: []orchestrator.WorkflowState{
			{ID: "ts-start", Type: orchestrator.StateTypeStart},
			{
				ID:              "ts-plan",
				Type:            orchestrator.StateTypeTask,
				AgentRole:       "qa",
				TaskDescription: "Derive a test plan from the change set",
			},
			{
				ID:            "ts-run",
				Type:          orchestrator.StateTypeParallel,
				JoinCondition: orchestrator.JoinAny,
				ParallelBranches: []orchestrator.ParallelBranch{
					{ID: "unit", States: []string{"ts-unit"}},
					{ID: "integration", States: []string{"ts-integration"}},
				},
			},
			{
				ID:              "ts-unit",
				Type:            orchestrator.StateTypeTask,
				AgentRole:       "ci",
				TaskDescription: "Run unit tests",
			},
			{
				ID:              "ts-integration",
				Type:            orchestrator.StateTypeTask,
				AgentRole:       "ci",
				TaskDescription: "Run integration tests",
			},
			{ID: "ts-done", Type: orchestrator.StateTypeEnd},
		},
		Transitions: []orchestrator.WorkflowTransition{
			{From: "ts-start", To: "ts-plan", Priority: 1, Enabled: true},
			{From: "ts-plan", To: "ts-run", Priority: 1, Enabled: true},
			{From: "ts-run", To: "ts-done", Priority: 1, Enabled: true},
		},
	}
}
