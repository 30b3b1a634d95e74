// Decision orchestrator server. Routes WhatsApp conversation turns through
// the SLM or legacy pipeline and executes the resulting tool plans.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/turnos-ai/orchestrator/pkg/api"
	"github.com/turnos-ai/orchestrator/pkg/broker"
	"github.com/turnos-ai/orchestrator/pkg/config"
	"github.com/turnos-ai/orchestrator/pkg/extract"
	"github.com/turnos-ai/orchestrator/pkg/llm"
	"github.com/turnos-ai/orchestrator/pkg/manifest"
	"github.com/turnos-ai/orchestrator/pkg/metrics"
	"github.com/turnos-ai/orchestrator/pkg/orchestrator"
	"github.com/turnos-ai/orchestrator/pkg/plan"
	"github.com/turnos-ai/orchestrator/pkg/policy"
	"github.com/turnos-ai/orchestrator/pkg/schema"
	"github.com/turnos-ai/orchestrator/pkg/tools"
	"github.com/turnos-ai/orchestrator/pkg/version"
)

func main() {
	configDir := flag.String("config-dir",
		config.Getenv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	// Load .env file from config directory
	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment",
			"path", envPath, "error", err)
	} else {
		slog.Info("Loaded environment", "path", envPath)
	}

	httpPort := config.Getenv("HTTP_PORT", "8080")
	slog.Info("Starting orchestrator",
		"version", version.Full(), "http_port", httpPort, "config_dir", *configDir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// 1. Configuration: environment settings plus the workspace catalog.
	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	// 2. Schema registry. A missing or malformed schema is fatal: nothing
	// downstream can validate model output without it.
	registry, err := schema.New()
	if err != nil {
		slog.Error("Failed to load schema registry", "error", err)
		os.Exit(1)
	}
	slog.Info("Schema registry loaded", "schemas", []string{schema.ExtractorV1, schema.PlannerV1, schema.ResponseV1})

	// 3. Model client and the two model-backed stages.
	client := llm.NewOpenAIClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, registry)
	extractor := extract.New(client, cfg.Pipeline.ExtractorBudget)
	planner := plan.New(client, cfg.Pipeline.PlannerBudget)

	// 4. Tool transport. Without TOOLS_BASE_URL the stub serves canned
	// results, which is the local development mode.
	var caller tools.Caller
	if cfg.Tools.BaseURL != "" {
		caller = tools.NewHTTPCaller(cfg.Tools.BaseURL)
		slog.Info("Tool transport: HTTP", "base_url", cfg.Tools.BaseURL)
	} else {
		caller = tools.NewStubCaller()
		slog.Warn("Tool transport: stub (TOOLS_BASE_URL unset)")
	}

	// 5. Deterministic back half shared by both routes.
	resolver := manifest.NewResolver(cfg.Catalog, cfg.Pipeline.ManifestTTL)
	engine := policy.New()
	dispatcher := broker.New(caller, broker.Config{
		DefaultTimeout:  cfg.Broker.DefaultTimeout,
		MaxRetries:      cfg.Broker.MaxRetries,
		RetryBase:       cfg.Broker.RetryBase,
		CircuitCooldown: cfg.Broker.CircuitCooldown,
		IdempotencyTTL:  cfg.Broker.IdempotencyTTL,
	})

	// 6. Pipelines and canary router.
	slm := orchestrator.NewSLM(extractor, planner, resolver, engine, dispatcher, cfg.Pipeline.TotalBudget)
	legacy := orchestrator.NewLegacy(slm)
	m := metrics.New()
	router := orchestrator.NewRouter(slm, legacy, m)

	flags := config.Flags()
	slog.Info("Orchestrator started",
		"workspaces", len(cfg.Catalog.Workspaces),
		"slm_enabled", flags.EnableSLM,
		"canary_percent", flags.Percent)

	// 7. Serve until signalled, then drain.
	server := api.NewServer(router, m)
	if err := server.Start(ctx, ":"+httpPort); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
	slog.Info("Shutdown complete")
}
