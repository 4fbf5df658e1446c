package llm

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/arbiterlab/madbench/internal/config"
)

// FromConfig builds the named provider from its config entry.
func FromConfig(cfg *config.Config, name string) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, errors.New("llm: empty provider name")
	}

	pcfg, ok := cfg.LLM.Providers[name]
	if !ok {
		available := make([]string, 0, len(cfg.LLM.Providers))
		for k := range cfg.LLM.Providers {
			available = append(available, k)
		}
		sort.Strings(available)
		return nil, fmt.Errorf("llm: provider %q not configured (available: %s)", name, strings.Join(available, ", "))
	}

	switch name {
	case "groq":
		return NewGroqProvider(pcfg.APIKey, pcfg.BaseURL, pcfg.Model)
	case "claude", "anthropic":
		return NewClaudeProvider(pcfg.APIKey, pcfg.BaseURL, pcfg.Model)
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", name)
	}
}

// DefaultProvider builds the experiment provider named by the config.
func DefaultProvider(cfg *config.Config) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}
	name := strings.TrimSpace(cfg.LLM.DefaultProvider)
	if name == "" {
		name = "groq"
	}
	return FromConfig(cfg, name)
}

// JudgeProvider builds the scoring judge's provider when one is
// configured; (nil, nil) means scoring is skipped.
func JudgeProvider(cfg *config.Config) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}
	name := strings.TrimSpace(cfg.LLM.JudgeProvider)
	if name == "" {
		return nil, nil
	}
	return FromConfig(cfg, name)
}
