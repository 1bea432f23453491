package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  port: 9090
  read_timeout: 10s
  write_timeout: 60s

worker_pool:
  size: 32
  queue_depth: 512

logging:
  level: debug
  encoding: json

metrics:
  enabled: true
  path: /metrics

tracing:
  enabled: true
  service_name: widget-api
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 32, cfg.WorkerPool.Size)
	assert.Equal(t, 512, cfg.WorkerPool.QueueDepth)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "widget-api", cfg.Tracing.ServiceName)
}

func TestLoadEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  port: 8080
  read_timeout: 30s
  write_timeout: 120s
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	t.Setenv("HTTPRESOURCE_SERVER_PORT", "3000")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
	assert.Equal(t, Default().WorkerPool.Size, cfg.WorkerPool.Size)
}
