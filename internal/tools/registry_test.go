package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "returns its parameters" }
func (echoTool) Execute(_ context.Context, params map[string]any, _ *orchestrator.Signal) (any, error) {
	return params, nil
}

func TestRegistryExecute(t *testing.T) {
	r := NewRegistry()
	r.Register(echoTool{})

	out, err := r.ExecuteTool(context.Background(), "echo", map[string]any{"k": "v"}, nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	params, ok := out.(map[string]any)
	if !ok || params["k"] != "v" {
		t.Errorf("output = %v", out)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	r := NewRegistry()
	if _, err := r.ExecuteTool(context.Background(), "ghost", nil, nil); err == nil {
		t.Fatal("expected an error for an unregistered tool")
	}
}

func TestAllTools(t *testing.T) {
	r := NewRegistry()
	r.Register(echoTool{})
	r.Register(NewHTTPRequestTool())

	infos := r.AllTools()
	if len(infos) != 2 {
		t.Fatalf("tools = %d, want 2", len(infos))
	}
}

func TestHTTPRequestTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Token") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer srv.Close()

	tool := NewHTTPRequestTool()
	out, err := tool.Execute(context.Background(), map[string]any{
		"url":     srv.URL,
		"headers": map[string]any{"X-Token": "secret"},
	}, nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	result := out.(map[string]any)
	if result["status"] != http.StatusOK {
		t.Errorf("status = %v", result["status"])
	}
	if !strings.Contains(result["body"].(string), `"ok":"yes"`) {
		t.Errorf("body = %v", result["body"])
	}
}

func TestHTTPRequestToolRequiresURL(t *testing.T) {
	tool := NewHTTPRequestTool()
	if _, err := tool.Execute(context.Background(), map[string]any{}, nil); err == nil {
		t.Fatal("expected an error without a url")
	}
}

func TestShellRunner(t *testing.T) {
	runner := NewShellRunner()
	out, err := runner.RunCommand(context.Background(), "sh", []string{"-c", "echo $GREETING"}, map[string]string{"GREETING": "hello"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("output = %q", out)
	}
}

func TestShellRunnerFailure(t *testing.T) {
	runner := NewShellRunner()
	if _, err := runner.RunCommand(context.Background(), "sh", []string{"-c", "exit 3"}, nil); err == nil {
		t.Fatal("expected an error for a non-zero exit")
	}
}

func TestShellRunnerEmptyCommand(t *testing.T) {
	runner := NewShellRunner()
	if _, err := runner.RunCommand(context.Background(), "", nil, nil); err == nil {
		t.Fatal("expected an error for an empty command")
	}
}
