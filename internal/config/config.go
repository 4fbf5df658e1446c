package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Experiment ExperimentConfig `yaml:"experiment"`
	Storage    StorageConfig    `yaml:"storage"`
}

type LLMConfig struct {
	DefaultProvider string                    `yaml:"default_provider,omitempty"`
	JudgeProvider   string                    `yaml:"judge_provider,omitempty"`
	Providers       map[string]ProviderConfig `yaml:"providers,omitempty"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

type ExperimentConfig struct {
	SampleSize        int           `yaml:"sample_size"`
	Concurrency       int           `yaml:"concurrency,omitempty"`
	Timeout           time.Duration `yaml:"timeout,omitempty"`
	RequestsPerMinute int           `yaml:"requests_per_minute,omitempty"`
	ResultsDir        string        `yaml:"results_dir,omitempty"`
	DatasetSplit      string        `yaml:"dataset_split,omitempty"`
}

type StorageConfig struct {
	Type string `yaml:"type,omitempty"` // "sqlite" or "memory"
	Path string `yaml:"path,omitempty"` // SQLite file path
}

// Load reads the YAML config and applies environment overrides for
// provider credentials.
func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// Default returns a config usable without a config file, populated from
// defaults and the environment only.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.LLM.Providers == nil {
		cfg.LLM.Providers = make(map[string]ProviderConfig)
	}
	if strings.TrimSpace(cfg.LLM.DefaultProvider) == "" {
		cfg.LLM.DefaultProvider = "groq"
	}
	if cfg.Experiment.SampleSize <= 0 {
		cfg.Experiment.SampleSize = 10
	}
	if cfg.Experiment.Concurrency <= 0 {
		cfg.Experiment.Concurrency = 1
	}
	if cfg.Experiment.RequestsPerMinute <= 0 {
		// The 14,400 requests/day budget leaves 10/min of steady headroom.
		cfg.Experiment.RequestsPerMinute = 10
	}
	if strings.TrimSpace(cfg.Experiment.ResultsDir) == "" {
		cfg.Experiment.ResultsDir = "results"
	}
	if strings.TrimSpace(cfg.Experiment.DatasetSplit) == "" {
		cfg.Experiment.DatasetSplit = "test"
	}
}

func applyEnvOverrides(cfg *Config) {
	if cfg == nil || cfg.LLM.Providers == nil {
		return
	}

	if v := strings.TrimSpace(os.Getenv("GROQ_API_KEY")); v != "" {
		p := cfg.LLM.Providers["groq"]
		p.APIKey = v
		cfg.LLM.Providers["groq"] = p
	}

	if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" {
		p := cfg.LLM.Providers["claude"]
		p.APIKey = v
		cfg.LLM.Providers["claude"] = p
	}
}
