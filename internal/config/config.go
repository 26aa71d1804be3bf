// Package config loads the platform's YAML configuration with
// ${ENV_VAR} interpolation and sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Output   OutputConfig   `yaml:"output"`
	Retry    RetryConfig    `yaml:"retry"`
	Platform PlatformConfig `yaml:"platform"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Rag      RagConfig      `yaml:"rag"`
}

// LLMConfig holds model provider settings.
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, dummy
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`  // supports ${ENV_VAR} interpolation
	Endpoint string `yaml:"endpoint"` // optional OpenAI-compatible endpoint
}

// OutputConfig holds run artifact settings.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// RetryConfig holds model retry behavior.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMs int `yaml:"base_delay_ms"`
	TimeoutSec  int `yaml:"timeout_sec"`
}

// PlatformConfig holds process runtime settings.
type PlatformConfig struct {
	WindowSize    int `yaml:"window_size"`
	MaxConcurrent int `yaml:"max_concurrent"` // 0 means unbounded
}

// MetricsConfig holds observability exporters.
type MetricsConfig struct {
	PushGatewayURL string `yaml:"pushgateway_url"`
	PushJobName    string `yaml:"push_job_name"`
	InfluxURL      string `yaml:"influx_url"`
	InfluxToken    string `yaml:"influx_token"`
	InfluxOrg      string `yaml:"influx_org"`
	InfluxBucket   string `yaml:"influx_bucket"`
}

// RagConfig tunes the enhancement pipeline.
type RagConfig struct {
	QualityThreshold    float64 `yaml:"quality_threshold"`
	MinLengthToCompress int     `yaml:"min_length_to_compress"`
	CompressConcurrency int     `yaml:"compress_concurrency"`
	ScoreFloor          float64 `yaml:"score_floor"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o",
		},
		Output: OutputConfig{
			Directory: "./runs",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelayMs: 500,
			TimeoutSec:  120,
		},
		Platform: PlatformConfig{
			WindowSize: 1000,
		},
		Metrics: MetricsConfig{
			PushJobName: "praxis",
		},
		Rag: RagConfig{
			QualityThreshold:    0.7,
			MinLengthToCompress: 1500,
			CompressConcurrency: 15,
			ScoreFloor:          0.0,
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file means
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes configuration to a YAML file.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExampleConfig returns a commented example config.
func ExampleConfig() string {
	return `# Praxis Configuration File
# Priority: CLI flags > environment variables > config file > defaults

llm:
  # Provider: openai (any OpenAI-compatible endpoint) or dummy (no network)
  provider: openai

  # Model name. Pricing is known for the common OpenAI and Anthropic models.
  model: gpt-4o

  # API Key: supports ${ENV_VAR} interpolation
  api_key: ${OPENAI_API_KEY}

  # Optional OpenAI-compatible endpoint override
  endpoint: ""

output:
  # Directory for run artifacts
  directory: ./runs

retry:
  # Maximum attempts per model call
  max_attempts: 3

  # Base backoff delay between attempts (milliseconds)
  base_delay_ms: 500

  # Timeout for each model call (seconds)
  timeout_sec: 120

platform:
  # How many processes the repository retains
  window_size: 1000

  # Cap on concurrently advancing processes; 0 means unbounded
  max_concurrent: 0

metrics:
  # Prometheus pushgateway; empty disables pushing
  pushgateway_url: ""
  push_job_name: praxis

  # InfluxDB event recording; empty URL disables it
  influx_url: ""
  influx_token: ${INFLUX_TOKEN}
  influx_org: ""
  influx_bucket: ""

rag:
  # Responses scoring above this skip slow enhancers
  quality_threshold: 0.7

  # Chunks shorter than this are never compressed
  min_length_to_compress: 1500

  # Parallel model calls during compression
  compress_concurrency: 15

  # Results below this score are filtered out
  score_floor: 0.0
`
}
