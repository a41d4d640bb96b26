// Package agents provides the in-memory agent collaborator: a pool of
// opaque external workers registered per role. What an agent actually does
// with its assignment is outside the orchestrator.
package agents

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Agent is one registered worker.
type Agent struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	Busy        bool      `json:"busy"`
	ExecutionID string    `json:"execution_id,omitempty"`
	Task        string    `json:"task,omitempty"`
	AssignedAt  time.Time `json:"assigned_at,omitempty"`
}

// Pool tracks agents by role and hands out idle ones.
type Pool struct {
	mu     sync.Mutex
	agents map[string]*Agent
}

func NewPool() *Pool {
	return &Pool{agents: make(map[string]*Agent)}
}

// Register adds count idle agents for role and returns their ids.
func (p *Pool) Register(role string, count int) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		agent := &Agent{ID: uuid.NewString(), Role: role}
		p.agents[agent.ID] = agent
		ids = append(ids, agent.ID)
	}
	return ids
}

// AssignAgent hands an idle agent of the given role to an execution.
func (p *Pool) AssignAgent(_ context.Context, executionID, role, task string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, agent := range p.agents {
		if agent.Role == role && !agent.Busy {
			agent.Busy = true
			agent.ExecutionID = executionID
			agent.Task = task
			agent.AssignedAt = time.Now().UTC()
			return agent.ID, nil
		}
	}
	return "", fmt.Errorf("no available agent for role %q", role)
}

// Available returns the number of idle agents for role.
func (p *Pool) Available(_ context.Context, role string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, agent := range p.agents {
		if agent.Role == role && !agent.Busy {
			n++
		}
	}
	return n, nil
}

// Release returns an agent to the idle pool.
func (p *Pool) Release(agentID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	agent, ok := p.agents[agentID]
	if !ok {
		return fmt.Errorf("unknown agent %q", agentID)
	}
	agent.Busy = false
	agent.ExecutionID = ""
	agent.Task = ""
	return nil
}
