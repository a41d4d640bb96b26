// Package tools provides the tool registry backing tool_call resolution
// actions, plus the shell command runner used by execute_command workflow
// actions.
package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

// Tool is a named operation invokable from a resolution action.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, params map[string]any, sig *orchestrator.Signal) (any, error)
}

// Registry holds the registered tools. It satisfies ports.ToolExecutor.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// ExecuteTool runs the named tool against the signal that triggered it.
func (r *Registry) ExecuteTool(ctx context.Context, toolName string, parameters map[string]any, signalContext *orchestrator.Signal) (any, error) {
	t, ok := r.Get(toolName)
	if !ok {
		return nil, fmt.Errorf("unknown tool: %q", toolName)
	}
	return t.Execute(ctx, parameters, signalContext)
}

// ToolInfo is the API-facing listing entry.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *Registry) AllTools() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]ToolInfo, 0, len(r.tools))
	for _, t := range r.tools {
		result = append(result, ToolInfo{Name: t.Name(), Description: t.Description()})
	}
	return result
}
