// Package config resolves agent settings from defaults, files and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
)

const (
	DefaultProvider      = ProviderAnthropic
	DefaultModel         = "claude-3-5-sonnet-20240620"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultOllamaModel   = "llama3.2"
	DefaultMaxTokens     = 4000
	DefaultMaxToolRounds = 20
	DefaultLogLevel      = "warn"

	// DefaultOllamaBaseURL is Ollama's OpenAI-compatible endpoint.
	DefaultOllamaBaseURL = "http://localhost:11434/v1"
)

// Config holds all runtime configuration for the agent.
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	// APIKey is only read from the environment, never from a config file.
	APIKey string

	MaxTokens      int
	MaxToolRounds  int
	RequestTimeout time.Duration

	// WorkingDir is the root for all tool paths. Empty means prompt for it.
	WorkingDir       string
	AllowOutsideRoot bool

	AuditDB  string
	Markdown bool
	// LogLevel is one of debug, info, warn or error. Verbose forces debug.
	LogLevel string
	Verbose  bool
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		Provider:      DefaultProvider,
		MaxTokens:     DefaultMaxTokens,
		MaxToolRounds: DefaultMaxToolRounds,
		LogLevel:      DefaultLogLevel,
	}
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.WorkingDir = strings.TrimSpace(cfg.WorkingDir)
	cfg.AuditDB = strings.TrimSpace(cfg.AuditDB)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.Model == "" {
		cfg.Model = defaultModelFor(cfg.Provider)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = DefaultMaxToolRounds
	}
	if cfg.RequestTimeout < 0 {
		cfg.RequestTimeout = 0
	}
	return cfg
}

func defaultModelFor(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderOllama:
		return DefaultOllamaModel
	case ProviderAnthropic:
		return DefaultModel
	default:
		return ""
	}
}

// Validate reports configuration that cannot be used to build a model.
// A missing API key is deliberately not checked here.
func Validate(cfg Config) error {
	switch cfg.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unsupported provider: %q", cfg.Provider)
	}
	if cfg.Model == "" {
		return fmt.Errorf("model is not set for provider %s", cfg.Provider)
	}
	return nil
}

// LoadDotEnv populates the process environment from .env files, ignoring
// missing files.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// ApplyEnv overlays environment variables on cfg.
func ApplyEnv(cfg Config, getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv("AGENT_PROVIDER")); v != "" {
		cfg.Provider = v
	}
	if v := strings.TrimSpace(getenv("AGENT_MODEL")); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(getenv("AGENT_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(getenv("AGENT_WORKING_DIR")); v != "" {
		cfg.WorkingDir = v
	}
	if v := strings.TrimSpace(getenv("AGENT_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	cfg.APIKey = APIKeyFor(strings.ToLower(strings.TrimSpace(cfg.Provider)), getenv)
	return cfg
}

// APIKeyFor returns the credential for provider from the environment.
func APIKeyFor(provider string, getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	switch provider {
	case ProviderOpenAI:
		return strings.TrimSpace(getenv("OPENAI_API_KEY"))
	case ProviderOllama:
		return ""
	default:
		if v := strings.TrimSpace(getenv("ANTHROPIC_API_KEY")); v != "" {
			return v
		}
		return strings.TrimSpace(getenv("ANTHROPIC_KEY"))
	}
}

// LoadFile decodes a TOML or YAML file over cfg. The format is chosen by
// extension.
func LoadFile(cfg Config, path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var raw fileConfig
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return cfg, fmt.Errorf("parse toml config %s: %w", path, err)
		}
		return raw.apply(cfg)
	case ".yaml", ".yml":
		var raw fileConfig
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("parse yaml config %s: %w", path, err)
		}
		return raw.apply(cfg)
	default:
		return cfg, fmt.Errorf("unsupported config format: %s", path)
	}
}

// fileConfig mirrors Config with pointer fields so absent keys keep defaults.
type fileConfig struct {
	Provider         *string `toml:"provider" yaml:"provider"`
	Model            *string `toml:"model" yaml:"model"`
	BaseURL          *string `toml:"base_url" yaml:"base_url"`
	MaxTokens        *int    `toml:"max_tokens" yaml:"max_tokens"`
	MaxToolRounds    *int    `toml:"max_tool_rounds" yaml:"max_tool_rounds"`
	RequestTimeout   *string `toml:"request_timeout" yaml:"request_timeout"`
	WorkingDir       *string `toml:"working_dir" yaml:"working_dir"`
	AllowOutsideRoot *bool   `toml:"allow_outside_root" yaml:"allow_outside_root"`
	AuditDB          *string `toml:"audit_db" yaml:"audit_db"`
	Markdown         *bool   `toml:"markdown" yaml:"markdown"`
	LogLevel         *string `toml:"log_level" yaml:"log_level"`
	Verbose          *bool   `toml:"verbose" yaml:"verbose"`
}

func (f fileConfig) apply(cfg Config) (Config, error) {
	if f.Provider != nil {
		cfg.Provider = *f.Provider
	}
	if f.Model != nil {
		cfg.Model = *f.Model
	}
	if f.BaseURL != nil {
		cfg.BaseURL = *f.BaseURL
	}
	if f.MaxTokens != nil {
		cfg.MaxTokens = *f.MaxTokens
	}
	if f.MaxToolRounds != nil {
		cfg.MaxToolRounds = *f.MaxToolRounds
	}
	if f.RequestTimeout != nil && strings.TrimSpace(*f.RequestTimeout) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(*f.RequestTimeout))
		if err != nil {
			return cfg, fmt.Errorf("invalid request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if f.WorkingDir != nil {
		cfg.WorkingDir = *f.WorkingDir
	}
	if f.AllowOutsideRoot != nil {
		cfg.AllowOutsideRoot = *f.AllowOutsideRoot
	}
	if f.AuditDB != nil {
		cfg.AuditDB = *f.AuditDB
	}
	if f.Markdown != nil {
		cfg.Markdown = *f.Markdown
	}
	if f.LogLevel != nil {
		cfg.LogLevel = *f.LogLevel
	}
	if f.Verbose != nil {
		cfg.Verbose = *f.Verbose
	}
	return cfg, nil
}
