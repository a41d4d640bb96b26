package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dcversus/prp-sub007/internal/catalog"
	"github.com/dcversus/prp-sub007/internal/condition"
	"github.com/dcversus/prp-sub007/internal/engine"
	"github.com/dcversus/prp-sub007/internal/integration"
	"github.com/dcversus/prp-sub007/internal/orchestrator"
	"github.com/dcversus/prp-sub007/internal/repository"
	"github.com/dcversus/prp-sub007/internal/resolution"
)

func newTestServer(t *testing.T) (*httptest.Server, *engine.Engine) {
	t.Helper()

	cat := catalog.New()
	eval := condition.New()
	eng := engine.New(cat, repository.NewMemoryExecutionRepository(), eval, &engine.Dispatcher{}, engine.NewEventBus())
	resolutions := resolution.NewCatalog()
	resolver := resolution.NewEngine(resolutions, nil, nil, nil, resolution.Options{})
	router := integration.NewRouter(cat, eng, resolver, eval)

	srv := httptest.NewServer(NewServer(cat, eng, resolutions, router).Handler())
	t.Cleanup(srv.Close)
	return srv, eng
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func simpleWorkflow(id string) *orchestrator.WorkflowDefinition {
	return &orchestrator.WorkflowDefinition{
		ID:   id,
		Name: "Simple " + id,
		States: []orchestrator.WorkflowState{
			{ID: "begin", Name: "Begin", Type: orchestrator.StateTypeStart},
			{ID: "done", Name: "Done", Type: orchestrator.StateTypeEnd},
		},
		Transitions: []orchestrator.WorkflowTransition{
			{From: "begin", To: "done", Enabled: true},
		},
	}
}

func TestWorkflowCRUD(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/workflows", simpleWorkflow("wf-api"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/workflows/wf-api")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	def := decode[orchestrator.WorkflowDefinition](t, resp)
	require.Equal(t, "Simple wf-api", def.Name)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/workflows/wf-api", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/workflows/wf-api")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisterInvalidWorkflow(t *testing.T) {
	srv, _ := newTestServer(t)

	bad := simpleWorkflow("wf-bad")
	bad.States = bad.States[:1] // no end state
	resp := postJSON(t, srv.URL+"/api/workflows", bad)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestStartAndPollExecution(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/workflows", simpleWorkflow("wf-run"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/workflows/wf-run/start", map[string]any{})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	started := decode[map[string]string](t, resp)
	execID := started["execution_id"]
	require.NotEmpty(t, execID)

	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get(srv.URL + "/api/executions/" + execID)
		require.NoError(t, err)
		exec := decode[orchestrator.WorkflowExecution](t, resp)
		if exec.Status == orchestrator.ExecutionCompleted {
			break
		}
		require.True(t, time.Now().Before(deadline), "execution stuck in %s", exec.Status)
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStartUnknownWorkflowIs404(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/workflows/nope/start", map[string]any{})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestLifecycleConflictIs409(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/workflows", simpleWorkflow("wf-conflict"))
	resp.Body.Close()
	resp = postJSON(t, srv.URL+"/api/workflows/wf-conflict/start", map[string]any{})
	started := decode[map[string]string](t, resp)
	execID := started["execution_id"]

	// Wait for completion, then pausing must conflict.
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get(srv.URL + "/api/executions/" + execID)
		require.NoError(t, err)
		exec := decode[orchestrator.WorkflowExecution](t, resp)
		if exec.Status == orchestrator.ExecutionCompleted {
			break
		}
		require.True(t, time.Now().Before(deadline))
		time.Sleep(10 * time.Millisecond)
	}

	resp = postJSON(t, srv.URL+"/api/executions/"+execID+"/pause", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestSubmitSignalFallsThroughToResolution(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/signals", map[string]any{
		"type":   "cp",
		"source": "ci",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	require.NotEmpty(t, body["signal_id"])
	result, ok := body["result"].(map[string]any)
	require.True(t, ok)
	require.NotNil(t, result["resolution"])
}

func TestSubmitSignalRequiresType(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/signals", map[string]any{"source": "x"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestResolutionCatalogEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	res := orchestrator.SignalResolution{
		SignalType: "zz",
		Category:   "test",
		Actions: []orchestrator.ResolutionAction{
			{Type: orchestrator.ResolutionNotification, Parameters: map[string]any{"channel": "c", "message": "m"}},
		},
	}
	resp := postJSON(t, srv.URL+"/api/resolutions", res)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/resolutions/zz")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[orchestrator.SignalResolution](t, resp)
	require.Equal(t, "test", got.Category)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/resolutions/zz", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/resolutions/zz")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
