package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	configpkg "github.com/minhyannv/workspace-agent/pkg/config"
)

// cliFlags holds raw flag values. Only flags the user set override the
// config file and environment.
type cliFlags struct {
	dir              string
	configFile       string
	provider         string
	model            string
	baseURL          string
	maxTokens        int
	maxToolRounds    int
	allowOutsideRoot bool
	auditDB          string
	markdown         bool
	logLevel         string
	verbose          bool
}

func bindFlags(cmd *cobra.Command, f *cliFlags) {
	defaults := configpkg.DefaultConfig()
	flags := cmd.Flags()
	flags.StringVar(&f.dir, "dir", "", "Working directory for all tool paths (prompted for when empty)")
	flags.StringVar(&f.configFile, "config", "", "Path to a .toml or .yaml config file")
	flags.StringVar(&f.provider, "provider", defaults.Provider, "Model provider: anthropic, openai or ollama")
	flags.StringVar(&f.model, "model", "", "Model identifier (provider default when empty)")
	flags.StringVar(&f.baseURL, "base-url", "", "Override the provider API base URL")
	flags.IntVar(&f.maxTokens, "max-tokens", defaults.MaxTokens, "Maximum output tokens per model call")
	flags.IntVar(&f.maxToolRounds, "max-tool-rounds", defaults.MaxToolRounds, "Maximum follow-up model calls per turn")
	flags.BoolVar(&f.allowOutsideRoot, "allow-outside-root", false, "Allow tool paths to resolve outside the working directory")
	flags.StringVar(&f.auditDB, "audit-db", "", "Record tool executions in this SQLite database")
	flags.BoolVar(&f.markdown, "markdown", false, "Render responses as markdown")
	flags.StringVar(&f.logLevel, "log-level", defaults.LogLevel, "Log level: debug, info, warn or error")
	flags.BoolVar(&f.verbose, "verbose", false, "Enable debug logging")
}

// resolveConfig layers defaults, the config file, the environment and the
// flags, in increasing precedence.
func resolveConfig(cmd *cobra.Command, f cliFlags, getenv func(string) string) (configpkg.Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := configpkg.DefaultConfig()

	cfg, err := configpkg.LoadFile(cfg, f.configFile)
	if err != nil {
		return cfg, err
	}
	cfg = configpkg.ApplyEnv(cfg, getenv)

	changed := cmd.Flags().Changed
	if changed("dir") {
		cfg.WorkingDir = f.dir
	}
	if changed("provider") {
		cfg.Provider = f.provider
	}
	if changed("model") {
		cfg.Model = f.model
	}
	if changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if changed("max-tokens") {
		cfg.MaxTokens = f.maxTokens
	}
	if changed("max-tool-rounds") {
		cfg.MaxToolRounds = f.maxToolRounds
	}
	if changed("allow-outside-root") {
		cfg.AllowOutsideRoot = f.allowOutsideRoot
	}
	if changed("audit-db") {
		cfg.AuditDB = f.auditDB
	}
	if changed("markdown") {
		cfg.Markdown = f.markdown
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("verbose") {
		cfg.Verbose = f.verbose
	}

	cfg = configpkg.Normalize(cfg)
	// The provider may have changed after ApplyEnv picked a key.
	cfg.APIKey = configpkg.APIKeyFor(cfg.Provider, getenv)
	if err := configpkg.Validate(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
