package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/varsilias/voicechat/internal/buildinfo"
	"github.com/varsilias/voicechat/internal/chat"
	"github.com/varsilias/voicechat/internal/config"
	"github.com/varsilias/voicechat/internal/logging"
	"github.com/varsilias/voicechat/internal/paramstore"
	"github.com/varsilias/voicechat/internal/server"
)

type serveFlags struct {
	configPath string
	addr       string
	staticDir  string
	logLevel   string
	logJSON    bool
	provider   string
	model      string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f serveFlags

	serve := func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(f.configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, f, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	}

	root := &cobra.Command{
		Use:           "voicechat",
		Short:         "Relay browser chat messages to an LLM over WebSocket",
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket server",
		RunE:  serve,
	}
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (commit %s, built %s)\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuiltAt)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "path to a YAML config file")
	pf.StringVar(&f.addr, "addr", "", "HTTP listen address (default 0.0.0.0:8000)")
	pf.StringVar(&f.staticDir, "static-dir", "", "directory holding the front end")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug|info|warn|error")
	pf.BoolVar(&f.logJSON, "log-json", false, "log as JSON")
	pf.StringVar(&f.provider, "provider", "", "completion provider: openai|ollama|echo")
	pf.StringVar(&f.model, "model", "", "model identifier (provider default when empty)")

	root.AddCommand(serveCmd, versionCmd)
	return root
}

// applyFlags overrides cfg with flags the user actually set.
func applyFlags(cmd *cobra.Command, f serveFlags, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = f.addr
	}
	if flags.Changed("static-dir") {
		cfg.StaticDir = f.staticDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = f.logJSON
	}
	if flags.Changed("provider") {
		cfg.Provider = f.provider
	}
	if flags.Changed("model") {
		cfg.Model = f.model
	}
}

func run(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, closeLog := logging.NewWithFile(cfg.LogLevel, cfg.LogJSON, cfg.LogFile)
	defer func() { _ = closeLog() }()
	logger.Info("build", "version", buildinfo.Version, "commit", buildinfo.Commit, "built_at", buildinfo.BuiltAt)

	cfg = resolveAPIKey(ctx, cfg, logger)
	if cfg.Provider == config.ProviderOpenAI && cfg.APIKey == "" {
		logger.Warn("no provider API key configured; every message will be answered with an error")
	}

	engine, err := chat.NewEngine(cfg)
	if err != nil {
		return err
	}

	handler, err := server.NewHandler(server.Deps{
		Log:      logger,
		Engine:   engine,
		Static:   os.DirFS(cfg.StaticDir),
		Provider: cfg.Provider,
		Model:    cfg.ModelName(),
	})
	if err != nil {
		return fmt.Errorf("build handler: %w", err)
	}

	// No WriteTimeout: it would cut long-lived WebSocket sessions.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() { errChan <- srv.ListenAndServe() }()
	logger.Info("voicechat server is listening", "addr", cfg.Addr, "provider", cfg.Provider, "model", cfg.ModelName(), "static_dir", cfg.StaticDir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}

func resolveAPIKey(ctx context.Context, cfg config.Config, logger *slog.Logger) config.Config {
	if cfg.APIKey != "" || cfg.APIKeyParam == "" {
		return cfg
	}
	lookupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := paramstore.NewFromEnvironment(lookupCtx)
	if err != nil {
		logger.Warn("parameter store unavailable", "err", err)
		return cfg
	}
	return cfg.WithStoredAPIKey(lookupCtx, store, logger)
}
