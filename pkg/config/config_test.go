package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalogFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestInitialize_Defaults(t *testing.T) {
	cfg, err := Initialize(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 800*time.Millisecond, cfg.Broker.DefaultTimeout)
	assert.Equal(t, 3, cfg.Broker.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Broker.CircuitCooldown)
	assert.Equal(t, 1500*time.Millisecond, cfg.Pipeline.TotalBudget)
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.ExtractorBudget)
	assert.Empty(t, cfg.Catalog.WorkspaceIDs())
}

func TestInitialize_EnvOverrides(t *testing.T) {
	t.Setenv("BROKER_DEFAULT_TIMEOUT_MS", "500")
	t.Setenv("BROKER_MAX_RETRIES", "1")
	t.Setenv("PIPELINE_TOTAL_BUDGET_MS", "2000")

	cfg, err := Initialize(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Broker.DefaultTimeout)
	assert.Equal(t, 1, cfg.Broker.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Pipeline.TotalBudget)
}

func TestInitialize_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("BROKER_MAX_RETRIES", "lots")
	t.Setenv("BROKER_DEFAULT_TIMEOUT_MS", "-5")

	cfg, err := Initialize(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Broker.MaxRetries)
	assert.Equal(t, 800*time.Millisecond, cfg.Broker.DefaultTimeout)
}

func TestCatalog_FetchBuiltinForDeclaredWorkspace(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "workspaces.yaml", `
workspaces:
  ws-demo:
    vertical: servicios
`)

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	entries, err := cfg.Catalog.Fetch(context.Background(), "ws-demo")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "book_appointment")
	assert.Contains(t, names, "get_business_hours")
	assert.Contains(t, names, "check_service_availability")
}

func TestCatalog_UnknownWorkspaceIsEmpty(t *testing.T) {
	cfg, err := Initialize(context.Background(), t.TempDir())
	require.NoError(t, err)

	entries, err := cfg.Catalog.Fetch(context.Background(), "ws-ghost")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCatalog_OverridesAndDisable(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "workspaces.yaml", `
workspaces:
  ws-demo:
    vertical: servicios
    disable: [rag_search]
    tools:
      book_appointment:
        timeout_ms: 3000
        max_rps_per_workspace: 1
`)

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	entries, err := cfg.Catalog.Fetch(context.Background(), "ws-demo")
	require.NoError(t, err)

	byName := map[string]bool{}
	for _, e := range entries {
		byName[e.Name] = true
		if e.Name == "book_appointment" {
			assert.Equal(t, 3000, e.TimeoutMS)
			assert.Equal(t, 1.0, e.Policy.MaxRPSPerWorkspace)
			assert.True(t, e.Policy.Write)
		}
	}
	assert.False(t, byName["rag_search"])
}

func TestCatalog_ValidationRejectsUnknownTool(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "workspaces.yaml", `
workspaces:
  ws-demo:
    disable: [teleport_client]
`)

	_, err := Initialize(context.Background(), dir)
	assert.ErrorContains(t, err, "unknown tool")
}

func TestLoadCatalog_LaterFilesWin(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "a_workspaces.yaml", `
workspaces:
  ws-demo:
    vertical: servicios
`)
	writeCatalogFile(t, dir, "b_local.yaml", `
workspaces:
  ws-demo:
    vertical: servicios
    disable: [get_staff]
`)

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	entries, err := cfg.Catalog.Fetch(context.Background(), "ws-demo")
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "get_staff", e.Name)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("DEMO_WS", "ws-42")
	out := ExpandEnv([]byte("workspaces:\n  {{.DEMO_WS}}:\n    vertical: servicios\n"))
	assert.Contains(t, string(out), "ws-42:")

	// Content without template syntax passes through.
	raw := []byte("plain: value\n")
	assert.Equal(t, raw, ExpandEnv(raw))
}
