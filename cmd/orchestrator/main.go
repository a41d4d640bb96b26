package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/dcversus/prp-sub007/internal/agents"
	"github.com/dcversus/prp-sub007/internal/api"
	"github.com/dcversus/prp-sub007/internal/catalog"
	"github.com/dcversus/prp-sub007/internal/condition"
	"github.com/dcversus/prp-sub007/internal/config"
	"github.com/dcversus/prp-sub007/internal/db"
	"github.com/dcversus/prp-sub007/internal/engine"
	"github.com/dcversus/prp-sub007/internal/integration"
	"github.com/dcversus/prp-sub007/internal/notify"
	"github.com/dcversus/prp-sub007/internal/repository"
	"github.com/dcversus/prp-sub007/internal/resolution"
	"github.com/dcversus/prp-sub007/internal/tasks"
	"github.com/dcversus/prp-sub007/internal/tools"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		serve()
		return
	}
	fmt.Println("orchestrator v0.1.0")
	fmt.Println("Usage: orchestrator serve")
}

func serve() {
	godotenv.Load()

	cfg, err := config.LoadDefault()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx := context.Background()

	workflows := catalog.New()
	if cfg.Engine.WorkflowDir != "" {
		n, err := workflows.LoadDir(ctx, cfg.Engine.WorkflowDir)
		if err != nil {
			slog.Error("workflow dir load failed", "dir", cfg.Engine.WorkflowDir, "err", err)
			os.Exit(1)
		}
		slog.Info("loaded workflow definitions", "dir", cfg.Engine.WorkflowDir, "count", n)
	}

	memRepo := repository.NewMemoryExecutionRepository()
	var execs repository.ExecutionRepository = memRepo
	if cfg.Database.URL != "" {
		database, err := db.New(ctx, cfg.Database.URL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			slog.Error("database migration failed", "err", err)
			os.Exit(1)
		}
		execs = repository.NewPersistent(memRepo, database)
		slog.Info("execution archive enabled")
	}

	notifier := notify.NewRouter(&notify.ConsoleSender{})
	if cfg.Notify.SlackWebhookURL != "" {
		notifier.Route("slack", &notify.SlackSender{WebhookURL: cfg.Notify.SlackWebhookURL})
	}

	taskSvc := tasks.NewService()
	agentPool := agents.NewPool()
	agentPool.Register("developer", 2)
	agentPool.Register("reviewer", 2)
	agentPool.Register("analyst", 1)
	agentPool.Register("operator", 1)

	toolReg := tools.NewRegistry()
	toolReg.Register(tools.NewHTTPRequestTool())

	resolutions := resolution.NewCatalog()
	resolver := resolution.NewEngine(resolutions, taskSvc, toolReg, notifier, resolution.Options{
		MaxDepth:          cfg.Engine.MaxSignalDepth,
		ObservationWindow: cfg.Engine.ObservationWindow,
	})

	eval := condition.New()
	bus := engine.NewEventBus()
	dispatcher := &engine.Dispatcher{
		Tasks:    taskSvc,
		Agents:   agentPool,
		Notifier: notifier,
		Commands: tools.NewShellRunner(),
		Signals:  resolver,
	}
	eng := engine.New(workflows, execs, eval, dispatcher, bus)

	// Completed tasks re-drive the execution waiting on them.
	taskSvc.OnCompletion(func(executionID, taskID, status string) {
		if err := eng.OnTaskCompleted(context.Background(), executionID, taskID, map[string]any{
			"task_id":     taskID,
			"task_status": status,
		}); err != nil {
			slog.Warn("task completion redrive failed", "execution", executionID, "task", taskID, "err", err)
		}
	})

	router := integration.NewRouter(workflows, eng, resolver, eval)

	sweeper := integration.NewSweeper(eng, cfg.Engine.RedriveInterval)
	if err := sweeper.Start(); err != nil {
		slog.Error("sweeper start failed", "err", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	srv := api.NewServer(workflows, eng, resolutions, router)
	addr := cfg.Server.Addr()
	slog.Info("starting orchestrator server", "addr", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
