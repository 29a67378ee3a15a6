// Command workspace-agent is an interactive coding assistant that can create,
// read and list files inside one working directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minhyannv/workspace-agent/pkg/agent"
	"github.com/minhyannv/workspace-agent/pkg/audit"
	configpkg "github.com/minhyannv/workspace-agent/pkg/config"
	"github.com/minhyannv/workspace-agent/pkg/llm"
	loggerpkg "github.com/minhyannv/workspace-agent/pkg/logger"
	"github.com/minhyannv/workspace-agent/pkg/prompt"
	"github.com/minhyannv/workspace-agent/pkg/render"
	"github.com/minhyannv/workspace-agent/pkg/session"
	"github.com/minhyannv/workspace-agent/pkg/tools"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var flags cliFlags
	cmd := &cobra.Command{
		Use:           "workspace-agent",
		Short:         "Chat with a model that can manage files in a working directory",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configpkg.LoadDotEnv()
			cfg, err := resolveConfig(cmd, flags, os.Getenv)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, cfg, os.Stdin, os.Stdout, os.Stderr)
		},
	}
	bindFlags(cmd, &flags)
	return cmd
}

// newAppLogger writes to w at cfg.LogLevel, or at debug when verbose.
func newAppLogger(cfg configpkg.Config, w io.Writer, sessionID string) loggerpkg.Logger {
	level := loggerpkg.ParseLevel(cfg.LogLevel)
	if cfg.Verbose {
		level = loggerpkg.LevelDebug
	}
	return loggerpkg.NewWriterLogger(w,
		loggerpkg.WithLevel(level),
		loggerpkg.WithFields(map[string]any{"session": sessionID}),
	)
}

func run(ctx context.Context, cfg configpkg.Config, stdin *os.File, stdout io.Writer, stderr io.Writer) error {
	sessionID := uuid.NewString()
	appLogger := newAppLogger(cfg, stderr, sessionID)
	appLogger.Debug("config resolved", map[string]any{
		"provider":           cfg.Provider,
		"model":              cfg.Model,
		"base_url":           cfg.BaseURL,
		"max_tokens":         cfg.MaxTokens,
		"max_tool_rounds":    cfg.MaxToolRounds,
		"allow_outside_root": cfg.AllowOutsideRoot,
		"audit_db":           cfg.AuditDB,
		"log_level":          cfg.LogLevel,
	})
	if cfg.APIKey == "" && cfg.Provider != configpkg.ProviderOllama {
		appLogger.Warn("no API key found in the environment", map[string]any{"provider": cfg.Provider})
	}

	backend, err := llm.NewModel(cfg)
	if err != nil {
		return err
	}
	backend = llm.WithTimeout(backend, cfg.RequestTimeout)

	var reader session.LineReader
	if render.IsTerminal(stdin) {
		reader = session.NewTerminalReader()
	} else {
		reader = session.NewScannerReader(stdin, stdout)
	}
	defer reader.Close()

	root, err := workingDir(cfg.WorkingDir, reader, stdout)
	if err != nil {
		return err
	}
	workspace, err := tools.NewWorkspace(root, cfg.AllowOutsideRoot, appLogger)
	if err != nil {
		return err
	}

	dispatcherOpts := []tools.DispatcherOption{tools.WithLogger(appLogger)}
	if cfg.AuditDB != "" {
		ledger, err := audit.Open(cfg.AuditDB, sessionID)
		if err != nil {
			return err
		}
		defer ledger.Close()
		dispatcherOpts = append(dispatcherOpts, tools.WithRecorder(ledger))
	}
	dispatcher := tools.NewDispatcher(workspace, dispatcherOpts...)

	printer := render.NewPrinter(stdout,
		render.WithColor(render.ColorEnabled(os.Stdout, os.Getenv)),
		render.WithMarkdown(cfg.Markdown),
	)
	conversation := agent.New(backend, dispatcher,
		agent.WithSystemPrompt(prompt.BuildSystemPrompt(tools.Descriptors(), workspace.Root())),
		agent.WithModelName(cfg.Model),
		agent.WithMaxTokens(cfg.MaxTokens),
		agent.WithMaxToolRounds(cfg.MaxToolRounds),
		agent.WithObserver(printer),
		agent.WithLogger(appLogger),
	)

	appLogger.Info("session started", map[string]any{"working_dir": workspace.Root(), "provider": cfg.Provider})
	return session.NewDriver(reader, conversation, printer, session.WithLogger(appLogger)).Run(ctx)
}

// workingDir validates the configured directory or asks for one.
func workingDir(configured string, reader session.LineReader, out io.Writer) (string, error) {
	if configured == "" {
		dir, err := session.PromptWorkingDir(reader, out)
		if errors.Is(err, io.EOF) {
			return "", errors.New("no working directory given")
		}
		return dir, err
	}
	dir, err := session.CheckDir(configured)
	if err != nil {
		return "", fmt.Errorf("working directory: %w", err)
	}
	return dir, nil
}
