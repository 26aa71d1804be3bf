package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "./runs", cfg.Output.Directory)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 1000, cfg.Platform.WindowSize)
	assert.Equal(t, 0.7, cfg.Rag.QualityThreshold)
	assert.Equal(t, 1500, cfg.Rag.MinLengthToCompress)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesAndKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `llm:
  provider: dummy
  model: gpt-3.5-turbo
platform:
  max_concurrent: 4
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "dummy", cfg.LLM.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	assert.Equal(t, 4, cfg.Platform.MaxConcurrent)
	// Unmentioned sections keep their defaults.
	assert.Equal(t, 1000, cfg.Platform.WindowSize)
	assert.Equal(t, "./runs", cfg.Output.Directory)
}

func TestLoadConfigExpandsEnvVars(t *testing.T) {
	t.Setenv("PRAXIS_TEST_KEY", "sk-secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "llm:\n  api_key: ${PRAXIS_TEST_KEY}\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", cfg.LLM.APIKey)
}

func TestLoadConfigRejectsMalformedYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "parse")
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Model = "claude-3-5-sonnet"
	cfg.Metrics.InfluxURL = "http://localhost:8086"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestExampleConfigParses(t *testing.T) {
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(os.ExpandEnv(ExampleConfig())), &cfg))
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 15, cfg.Rag.CompressConcurrency)
}
