package resolution

import "github.com/dcversus/prp-sub007/internal/orchestrator"

// builtinResolutions returns the stock catalog. Signal types are the short
// codes used across the system; the catalog groups them by family. Priority
// is cross-signal scheduling metadata for external callers; within one
// resolution, actions always run in declared order.
func builtinResolutions() []*orchestrator.SignalResolution {
	var out []*orchestrator.SignalResolution
	out = append(out, gitResolutions()...)
	out = append(out, reviewResolutions()...)
	out = append(out, ciResolutions()...)
	out = append(out, deployResolutions()...)
	out = append(out, testingResolutions()...)
	out = append(out, agentResolutions()...)
	out = append(out, prpResolutions()...)
	out = append(out, commsResolutions()...)
	out = append(out, securityResolutions()...)
	out = append(out, opsResolutions()...)
	out = append(out, blockerResolution())
	return out
}

func agentTask(agentType, task string, priority int) orchestrator.ResolutionAction {
	return orchestrator.ResolutionAction{
		Type: orchestrator.ResolutionAgentTask,
		Parameters: map[string]any{
			"agent_type": agentType,
			"task":       task,
			"priority":   priority,
		},
	}
}

func notification(channel, message string) orchestrator.ResolutionAction {
	return orchestrator.ResolutionAction{
		Type: orchestrator.ResolutionNotification,
		Parameters: map[string]any{
			"channel": channel,
			"message": message,
		},
	}
}

func emitSignal(signalType string) orchestrator.ResolutionAction {
	return orchestrator.ResolutionAction{
		Type:       orchestrator.ResolutionSignal,
		Parameters: map[string]any{"signal_type": signalType},
	}
}

func prpUpdate(note string) orchestrator.ResolutionAction {
	return orchestrator.ResolutionAction{
		Type:       orchestrator.ResolutionPRPUpdate,
		Parameters: map[string]any{"note": note},
	}
}

func toolCall(tool string, params map[string]any) orchestrator.ResolutionAction {
	return orchestrator.ResolutionAction{
		Type: orchestrator.ResolutionToolCall,
		Parameters: map[string]any{
			"tool_name":  tool,
			"parameters": params,
		},
	}
}

// blockerResolution is the "bb" entry: highest-urgency handling with an
// escalation path. It declares exactly three actions, executed in order.
func blockerResolution() *orchestrator.SignalResolution {
	return &orchestrator.SignalResolution{
		SignalType:  "bb",
		Category:    "blocker",
		Description: "work is blocked and needs intervention",
		Priority:    9,
		Actions: []orchestrator.ResolutionAction{
			notification("urgent", "blocker reported, intervention required"),
			agentTask("analyst", "investigate the reported blocker and propose an unblock path", 9),
			prpUpdate("blocker reported, investigation started"),
		},
		EscalationPath: []orchestrator.ResolutionAction{
			notification("escalations", "blocker unresolved, escalating to operator"),
			agentTask("architect", "take over unresolved blocker", 10),
		},
		Prerequisites:   []string{"blocker_description"},
		SuccessCriteria: []string{"task_id"},
		FailureHandling: []orchestrator.ResolutionAction{
			notification("ops", "blocker resolution action failed"),
		},
	}
}

func gitResolutions() []*orchestrator.SignalResolution {
	return []*orchestrator.SignalResolution{
		{
			SignalType: "cm", Category: "git", Priority: 3,
			Description: "commit pushed",
			Actions: []orchestrator.ResolutionAction{
				toolCall("ci_trigger", map[string]any{"pipeline": "default"}),
				prpUpdate("commit pushed, CI triggered"),
			},
		},
		{
			SignalType: "pr", Category: "git", Priority: 6,
			Description: "pull request opened",
			Actions: []orchestrator.ResolutionAction{
				agentTask("reviewer", "review the newly opened pull request", 6),
				notification("reviews", "pull request opened and review assigned"),
				prpUpdate("pull request opened"),
			},
		},
		{
			SignalType: "mg", Category: "git", Priority: 5,
			Description: "pull request merged",
			Actions: []orchestrator.ResolutionAction{
				prpUpdate("pull request merged"),
				emitSignal("dp"),
			},
		},
		{
			SignalType: "cf", Category: "git", Priority: 7,
			Description: "merge conflict detected",
			Actions: []orchestrator.ResolutionAction{
				agentTask("developer", "resolve the merge conflict", 7),
				notification("dev", "merge conflict needs resolution"),
			},
		},
		{
			SignalType: "br", Category: "git", Priority: 2,
			Description: "branch created",
			Actions: []orchestrator.ResolutionAction{
				prpUpdate("work branch created"),
			},
		},
		{
			SignalType: "tg", Category: "git", Priority: 4,
			Description: "release tag pushed",
			Actions: []orchestrator.ResolutionAction{
				toolCall("ci_trigger", map[string]any{"pipeline": "release"}),
				prpUpdate("release tag pushed, release pipeline triggered"),
			},
		},
		{
			SignalType: "rt", Category: "git", Priority: 7,
			Description: "revert requested",
			Actions: []orchestrator.ResolutionAction{
				agentTask("developer", "prepare the revert commit", 7),
				notification("dev", "revert in progress"),
			},
		},
		{
			SignalType: "fp", Category: "git", Priority: 6,
			Description: "force push detected on a shared branch",
			Actions: []orchestrator.ResolutionAction{
				notification("dev", "force push on shared branch, history rewritten"),
				agentTask("analyst", "verify no work was lost in the force push", 6),
			},
		},
	}
}

func reviewResolutions() []*orchestrator.SignalResolution {
	return []*orchestrator.SignalResolution{
		{
			SignalType: "rv", Category: "review", Priority: 6,
			Description: "review requested",
			Actions: []orchestrator.ResolutionAction{
				agentTask("reviewer", "perform the requested review", 6),
			},
		},
		{
			SignalType: "ra", Category: "review", Priority: 4,
			Description: "review approved",
			Actions: []orchestrator.ResolutionAction{
				prpUpdate("review approved"),
				emitSignal("mg"),
			},
		},
		{
			SignalType: "rc", Category: "review", Priority: 6,
			Description: "changes requested in review",
			Actions: []orchestrator.ResolutionAction{
				agentTask("developer", "address requested review changes", 6),
				prpUpdate("review requested changes"),
			},
		},
		{
			SignalType: "rr", Category: "review", Priority: 5,
			Description: "re-review requested after changes",
			Actions: []orchestrator.ResolutionAction{
				agentTask("reviewer", "re-review the updated changes", 5),
			},
		},
		{
			SignalType: "ro", Category: "review", Priority: 6,
			Description: "review overdue",
			Actions: []orchestrator.ResolutionAction{
				notification("reviews", "review is overdue, nudging reviewer"),
			},
			EscalationPath: []orchestrator.ResolutionAction{
				agentTask("reviewer", "take over the overdue review", 7),
			},
		},
	}
}

func ciResolutions() []*orchestrator.SignalResolution {
	return []*orchestrator.SignalResolution{
		{
			SignalType: "cp", Category: "ci", Priority: 3,
			Description: "CI pipeline passed",
			Actions: []orchestrator.ResolutionAction{
				prpUpdate("CI passed"),
			},
		},
		{
			SignalType: "cx", Category: "ci", Priority: 7,
			Description: "CI pipeline failed",
			Actions: []orchestrator.ResolutionAction{
				agentTask("developer", "diagnose and fix the failing CI pipeline", 7),
				notification("ci", "CI failure assigned"),
				prpUpdate("CI failed, fix in progress"),
			},
			FailureHandling: []orchestrator.ResolutionAction{
				notification("ops", "automated CI failure handling failed"),
			},
		},
		{
			SignalType: "bd", Category: "ci", Priority: 7,
			Description: "build failed",
			Actions: []orchestrator.ResolutionAction{
				agentTask("developer", "fix the broken build", 7),
				notification("ci", "build broken"),
			},
		},
		{
			SignalType: "lf", Category: "ci", Priority: 4,
			Description: "lint check failed",
			Actions: []orchestrator.ResolutionAction{
				agentTask("developer", "fix the lint findings", 4),
			},
		},
		{
			SignalType: "cd", Category: "ci", Priority: 4,
			Description: "coverage dropped below threshold",
			Actions: []orchestrator.ResolutionAction{
				agentTask("developer", "restore test coverage above the threshold", 4),
				prpUpdate("coverage regression flagged"),
			},
		},
		{
			SignalType: "fk", Category: "ci", Priority: 5,
			Description: "flaky test detected",
			Actions: []orchestrator.ResolutionAction{
				agentTask("developer", "stabilize or quarantine the flaky test", 5),
				prpUpdate("flaky test recorded"),
			},
		},
	}
}

func deployResolutions() []*orchestrator.SignalResolution {
	return []*orchestrator.SignalResolution{
		{
			SignalType: "dp", Category: "deploy", Priority: 8,
			Description: "deployment requested",
			Actions: []orchestrator.ResolutionAction{
				toolCall("deploy", map[string]any{"environment": "production"}),
				notification("releases", "deployment started"),
			},
			Prerequisites: []string{"ci_passed"},
		},
		{
			SignalType: "ds", Category: "deploy", Priority: 4,
			Description: "deployment succeeded",
			Actions: []orchestrator.ResolutionAction{
				notification("releases", "deployment succeeded"),
				prpUpdate("deployed to production"),
			},
		},
		{
			SignalType: "df", Category: "deploy", Priority: 9,
			Description: "deployment failed",
			Actions: []orchestrator.ResolutionAction{
				emitSignal("rb"),
				agentTask("operator", "investigate the failed deployment", 9),
				notification("incidents", "deployment failed, rollback requested"),
			},
			EscalationPath: []orchestrator.ResolutionAction{
				notification("escalations", "deployment failure unhandled"),
			},
		},
		{
			SignalType: "rb", Category: "deploy", Priority: 9,
			Description: "rollback requested",
			Actions: []orchestrator.ResolutionAction{
				toolCall("rollback", map[string]any{"environment": "production"}),
				notification("incidents", "rollback executed"),
			},
		},
		{
			SignalType: "sg", Category: "deploy", Priority: 5,
			Description: "staging deployment requested",
			Actions: []orchestrator.ResolutionAction{
				toolCall("deploy", map[string]any{"environment": "staging"}),
				notification("releases", "staging deployment started"),
			},
		},
		{
			SignalType: "cy", Category: "deploy", Priority: 6,
			Description: "canary rollout started",
			Actions: []orchestrator.ResolutionAction{
				notification("releases", "canary rollout in progress"),
				prpUpdate("canary started"),
			},
		},
		{
			SignalType: "cr", Category: "deploy", Priority: 9,
			Description: "canary regression detected",
			Actions: []orchestrator.ResolutionAction{
				emitSignal("rb"),
				notification("incidents", "canary regression, rolling back"),
			},
		},
		{
			SignalType: "hx", Category: "deploy", Priority: 9,
			Description: "hotfix requested",
			Actions: []orchestrator.ResolutionAction{
				agentTask("developer", "prepare the hotfix", 9),
				notification("incidents", "hotfix in progress"),
			},
		},
	}
}

func testingResolutions() []*orchestrator.SignalResolution {
	return []*orchestrator.SignalResolution{
		{
			SignalType: "tr", Category: "testing", Priority: 5,
			Description: "test run requested",
			Actions: []orchestrator.ResolutionAction{
				toolCall("test_runner", map[string]any{"suite": "full"}),
			},
		},
		{
			SignalType: "tf", Category: "testing", Priority: 6,
			Description: "tests failed",
			Actions: []orchestrator.ResolutionAction{
				agentTask("developer", "fix the failing tests", 6),
				prpUpdate("test failures under investigation"),
			},
		},
		{
			SignalType: "tp", Category: "testing", Priority: 3,
			Description: "tests passed",
			Actions: []orchestrator.ResolutionAction{
				prpUpdate("tests passed"),
			},
		},
		{
			SignalType: "sm", Category: "testing", Priority: 7,
			Description: "smoke tests failed after deploy",
			Actions: []orchestrator.ResolutionAction{
				emitSignal("rb"),
				notification("incidents", "smoke tests failed, rollback requested"),
			},
		},
		{
			SignalType: "ee", Category: "testing", Priority: 6,
			Description: "end-to-end suite failed",
			Actions: []orchestrator.ResolutionAction{
				agentTask("developer", "investigate the end-to-end failures", 6),
			},
		},
		{
			SignalType: "pf", Category: "testing", Priority: 5,
			Description: "performance regression detected",
			Actions: []orchestrator.ResolutionAction{
				agentTask("analyst", "profile and report the performance regression", 5),
				prpUpdate("performance regression flagged"),
			},
		},
	}
}

func agentResolutions() []*orchestrator.SignalResolution {
	return []*orchestrator.SignalResolution{
		{
			SignalType: "as", Category: "agent", Priority: 7,
			Description: "agent reported itself stuck",
			Actions: []orchestrator.ResolutionAction{
				notification("ops", "agent stuck, reassigning"),
				agentTask("analyst", "review the stuck agent's task and unblock it", 7),
			},
		},
		{
			SignalType: "ac", Category: "agent", Priority: 3,
			Description: "agent completed its task",
			Actions: []orchestrator.ResolutionAction{
				prpUpdate("agent task completed"),
			},
		},
		{
			SignalType: "ax", Category: "agent", Priority: 7,
			Description: "agent errored",
			Actions: []orchestrator.ResolutionAction{
				agentTask("analyst", "triage the agent error", 7),
				notification("ops", "agent error triaged"),
			},
			FailureHandling: []orchestrator.ResolutionAction{
				notification("ops", "agent error handling itself failed"),
			},
		},
		{
			SignalType: "ai", Category: "agent", Priority: 1,
			Description: "agent idle",
			Actions: []orchestrator.ResolutionAction{
				// Only pick up new work when a backlog marker is present.
				{
					Type: orchestrator.ResolutionAgentTask,
					Conditions: []orchestrator.ActionCondition{
						{Field: "data.backlog", Operator: orchestrator.OpExists},
					},
					Parameters: map[string]any{
						"agent_type": "developer",
						"task":       "pick up the next backlog item",
						"priority":   1,
					},
				},
			},
		},
		{
			SignalType: "hb", Category: "agent", Priority: 6,
			Description: "agent heartbeat missed",
			Actions: []orchestrator.ResolutionAction{
				notification("ops", "agent heartbeat missed"),
				agentTask("operator", "check the unresponsive agent", 6),
			},
		},
		{
			SignalType: "at", Category: "agent", Priority: 7,
			Description: "agent task timed out",
			Actions: []orchestrator.ResolutionAction{
				agentTask("analyst", "reassign or split the timed-out task", 7),
				prpUpdate("agent task timed out, reassignment in progress"),
			},
		},
	}
}

func prpResolutions() []*orchestrator.SignalResolution {
	return []*orchestrator.SignalResolution{
		{
			SignalType: "pn", Category: "prp", Priority: 5,
			Description: "PRP created",
			Actions: []orchestrator.ResolutionAction{
				agentTask("architect", "break the new PRP down into tasks", 5),
				prpUpdate("PRP registered with the orchestrator"),
			},
		},
		{
			SignalType: "pu", Category: "prp", Priority: 2,
			Description: "PRP updated",
			Actions: []orchestrator.ResolutionAction{
				prpUpdate("PRP content updated"),
			},
		},
		{
			SignalType: "pc", Category: "prp", Priority: 4,
			Description: "PRP completed",
			Actions: []orchestrator.ResolutionAction{
				notification("delivery", "PRP completed"),
				prpUpdate("PRP closed as completed"),
			},
		},
		{
			SignalType: "px", Category: "prp", Priority: 8,
			Description: "PRP blocked",
			Actions: []orchestrator.ResolutionAction{
				emitSignal("bb"),
			},
		},
		{
			SignalType: "pa", Category: "prp", Priority: 5,
			Description: "PRP approved for execution",
			Actions: []orchestrator.ResolutionAction{
				prpUpdate("PRP approved, execution may begin"),
				notification("delivery", "PRP approved"),
			},
		},
		{
			SignalType: "pg", Category: "prp", Priority: 2,
			Description: "PRP progress reported",
			Actions: []orchestrator.ResolutionAction{
				prpUpdate("progress reported"),
			},
		},
		{
			SignalType: "pd", Category: "prp", Priority: 3,
			Description: "PRP deferred",
			Actions: []orchestrator.ResolutionAction{
				prpUpdate("PRP deferred"),
				notification("delivery", "PRP deferred, work paused"),
			},
		},
	}
}

func commsResolutions() []*orchestrator.SignalResolution {
	return []*orchestrator.SignalResolution{
		{
			SignalType: "nu", Category: "comms", Priority: 4,
			Description: "user nudge",
			Actions: []orchestrator.ResolutionAction{
				agentTask("analyst", "summarize current progress for the user", 4),
			},
		},
		{
			SignalType: "qq", Category: "comms", Priority: 5,
			Description: "question raised",
			Actions: []orchestrator.ResolutionAction{
				notification("questions", "a question needs an answer"),
				prpUpdate("open question recorded"),
			},
		},
		{
			SignalType: "dd", Category: "comms", Priority: 6,
			Description: "decision needed",
			Actions: []orchestrator.ResolutionAction{
				notification("decisions", "a decision is required to proceed"),
				{
					Type: orchestrator.ResolutionEscalation,
					Conditions: []orchestrator.ActionCondition{
						{Field: "data.urgent", Operator: orchestrator.OpEquals, Value: true},
					},
				},
			},
			EscalationPath: []orchestrator.ResolutionAction{
				notification("escalations", "urgent decision pending"),
			},
		},
		{
			SignalType: "um", Category: "comms", Priority: 5,
			Description: "user message received",
			Actions: []orchestrator.ResolutionAction{
				agentTask("analyst", "read and act on the user message", 5),
			},
		},
		{
			SignalType: "fb", Category: "comms", Priority: 4,
			Description: "feedback received",
			Actions: []orchestrator.ResolutionAction{
				prpUpdate("feedback recorded"),
				agentTask("analyst", "fold the feedback into the plan", 4),
			},
		},
	}
}

func securityResolutions() []*orchestrator.SignalResolution {
	return []*orchestrator.SignalResolution{
		{
			SignalType: "sv", Category: "security", Priority: 9,
			Description: "vulnerability reported",
			Actions: []orchestrator.ResolutionAction{
				notification("security", "vulnerability reported, triage started"),
				agentTask("analyst", "assess severity and blast radius of the vulnerability", 9),
			},
			EscalationPath: []orchestrator.ResolutionAction{
				notification("escalations", "vulnerability triage stalled"),
			},
		},
		{
			SignalType: "sx", Category: "security", Priority: 6,
			Description: "security scan failed",
			Actions: []orchestrator.ResolutionAction{
				agentTask("developer", "fix the security scan findings", 6),
			},
		},
		{
			SignalType: "dv", Category: "security", Priority: 7,
			Description: "vulnerable dependency detected",
			Actions: []orchestrator.ResolutionAction{
				agentTask("developer", "upgrade or pin the vulnerable dependency", 7),
				prpUpdate("vulnerable dependency flagged"),
			},
		},
		{
			SignalType: "du", Category: "security", Priority: 2,
			Description: "dependency updates available",
			Actions: []orchestrator.ResolutionAction{
				agentTask("developer", "review and apply pending dependency updates", 2),
			},
		},
	}
}

func opsResolutions() []*orchestrator.SignalResolution {
	return []*orchestrator.SignalResolution{
		{
			SignalType: "mo", Category: "ops", Priority: 7,
			Description: "monitoring alert fired",
			Actions: []orchestrator.ResolutionAction{
				notification("ops", "monitoring alert fired"),
				agentTask("operator", "investigate the firing alert", 7),
			},
		},
		{
			SignalType: "ot", Category: "ops", Priority: 9,
			Description: "outage reported",
			Actions: []orchestrator.ResolutionAction{
				notification("incidents", "outage reported, incident opened"),
				agentTask("operator", "run the outage incident response", 9),
			},
			EscalationPath: []orchestrator.ResolutionAction{
				notification("escalations", "outage unresolved"),
			},
			FailureHandling: []orchestrator.ResolutionAction{
				notification("escalations", "outage response action failed"),
			},
		},
		{
			SignalType: "rl", Category: "ops", Priority: 5,
			Description: "rate limit hit on an external service",
			Actions: []orchestrator.ResolutionAction{
				notification("ops", "external rate limit reached, backing off"),
			},
		},
		{
			SignalType: "dn", Category: "ops", Priority: 3,
			Description: "documentation update needed",
			Actions: []orchestrator.ResolutionAction{
				agentTask("developer", "update the affected documentation", 3),
			},
		},
		{
			SignalType: "rn", Category: "ops", Priority: 3,
			Description: "release notes needed",
			Actions: []orchestrator.ResolutionAction{
				agentTask("analyst", "draft release notes for the pending release", 3),
			},
		},
	}
}
