// Package config loads the orchestrator configuration: process settings from
// the environment, and the per-workspace tool catalog from YAML files merged
// over built-in "servicios" defaults.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config is the immutable startup configuration. Canary flags are NOT here:
// they are re-read from the environment per request (see Flags) so operators
// can roll the split back without a restart.
type Config struct {
	Broker   BrokerSettings
	Pipeline PipelineSettings
	LLM      LLMSettings
	Tools    ToolsSettings

	// Catalog is the merged per-workspace tool catalog.
	Catalog *Catalog
}

// BrokerSettings tune tool execution.
type BrokerSettings struct {
	DefaultTimeout  time.Duration
	MaxRetries      int
	CircuitCooldown time.Duration
	RetryBase       time.Duration
	IdempotencyTTL  time.Duration
}

// PipelineSettings tune the decision pipeline stage budgets.
type PipelineSettings struct {
	TotalBudget     time.Duration
	ExtractorBudget time.Duration
	PlannerBudget   time.Duration
	ManifestTTL     time.Duration
}

// LLMSettings locate the JSON-constrained model server (OpenAI-compatible).
type LLMSettings struct {
	BaseURL string
	APIKey  string
	Model   string
}

// ToolsSettings locate the tool execution collaborator.
type ToolsSettings struct {
	BaseURL string
}

// Initialize loads, merges and validates configuration from configDir.
// Steps: read YAML catalog files, expand environment references, merge the
// workspace overlays over the built-in servicios catalog, validate.
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	catalog, err := loadCatalog(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load tool catalog: %w", err)
	}
	if err := catalog.validate(); err != nil {
		return nil, fmt.Errorf("tool catalog validation failed: %w", err)
	}

	cfg := &Config{
		Broker: BrokerSettings{
			DefaultTimeout:  envDurationMS("BROKER_DEFAULT_TIMEOUT_MS", 800*time.Millisecond),
			MaxRetries:      envInt("BROKER_MAX_RETRIES", 3),
			CircuitCooldown: envDurationMS("CIRCUIT_OPEN_COOLDOWN_MS", 30*time.Second),
			RetryBase:       envDurationMS("BROKER_RETRY_BASE_MS", 100*time.Millisecond),
			IdempotencyTTL:  envDurationMS("IDEMPOTENCY_TTL_MS", 10*time.Minute),
		},
		Pipeline: PipelineSettings{
			TotalBudget:     envDurationMS("PIPELINE_TOTAL_BUDGET_MS", 1500*time.Millisecond),
			ExtractorBudget: envDurationMS("EXTRACTOR_BUDGET_MS", 250*time.Millisecond),
			PlannerBudget:   envDurationMS("PLANNER_BUDGET_MS", 200*time.Millisecond),
			ManifestTTL:     envDurationMS("MANIFEST_TTL_MS", 5*time.Minute),
		},
		LLM: LLMSettings{
			BaseURL: Getenv("SLM_BASE_URL", "http://localhost:8001/v1"),
			APIKey:  Getenv("SLM_API_KEY", "unused"),
			Model:   Getenv("SLM_MODEL", "qwen2.5-3b-instruct"),
		},
		Tools: ToolsSettings{
			BaseURL: Getenv("TOOLS_BASE_URL", ""),
		},
		Catalog: catalog,
	}

	log.Info("Configuration initialized",
		"workspaces", len(catalog.Workspaces),
		"builtin_tools", len(builtinCatalog()),
		"broker_default_timeout", cfg.Broker.DefaultTimeout,
		"total_budget", cfg.Pipeline.TotalBudget)
	return cfg, nil
}

// Getenv returns the value of key or a default when unset or empty.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Invalid integer in environment, using default",
			"key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDurationMS(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms < 0 {
		slog.Warn("Invalid duration in environment, using default",
			"key", key, "value", v, "default", def)
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
