package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/yupi/agentcore/internal/activity"
	"github.com/yupi/agentcore/internal/api"
	"github.com/yupi/agentcore/internal/archive"
	"github.com/yupi/agentcore/internal/calendar"
	"github.com/yupi/agentcore/internal/command"
	"github.com/yupi/agentcore/internal/config"
	"github.com/yupi/agentcore/internal/enrich"
	"github.com/yupi/agentcore/internal/jobs"
	"github.com/yupi/agentcore/internal/ollama"
	"github.com/yupi/agentcore/internal/router"
	"github.com/yupi/agentcore/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the agentcore daemon (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running agentcore daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agentcore system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "agentcore.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "agentcore version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Ensure API token exists in platform secret store.
	apiToken, err := config.GetAPIToken(config.NewKeychain())
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}
	slog.Info("API bearer token available")

	// Write PID file. Check if the daemon is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("agentcore is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("agentcore is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Calendar.Timezone)
	if err != nil {
		slog.Warn("invalid timezone, using UTC", "timezone", cfg.Calendar.Timezone, "error", err)
		loc = time.UTC
	}

	// Check Ollama readiness.
	ollamaClient := ollama.New(cfg.Ollama.BaseURL)
	models := []string{cfg.Ollama.ExtractModel, cfg.Ollama.BriefingModel, cfg.Ollama.EmbedModel}
	if err := ollama.EnsureReady(ctx, ollamaClient, models, os.Stderr); err != nil {
		return err
	}

	// Open storage: SQLite primary plus the local fallback log.
	primary, err := store.OpenSQLite(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := primary.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()
	fallback := store.NewFallback(filepath.Join(cfg.Storage.DataDir, "fallback"), cfg.Storage.FallbackCap, cfg.Storage.DedupWindow())

	// Wire the pipeline.
	enricher := enrich.New(ollamaClient, cfg.Ollama.EmbedModel)
	records := store.New(primary, fallback, enricher, logger)
	extractor := command.NewExtractor(ollamaClient, cfg.Ollama.ExtractModel)
	calendarClient := calendar.New(cfg.Calendar.BaseURL, cfg.Calendar.Token)
	archiveClient := archive.New(cfg.Archive.BaseURL, cfg.Archive.Token, cfg.Archive.Folder)
	aggregator := activity.New(records, calendarClient, ollamaClient, cfg.Ollama.BriefingModel, loc, logger)
	dispatcher := router.New(records, calendarClient, aggregator, primary, loc, logger)

	appHandler := api.NewAppHandler(api.AppDeps{
		Extractor: extractor,
		Router:    dispatcher,
		Activity:  aggregator,
		Store:     records,
		Token:     apiToken,
		Loc:       loc,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: appHandler,
	}

	// Start the archive worker.
	worker := jobs.NewWorker(primary, archiveClient, 500*time.Millisecond, logger)
	go worker.Run(ctx)

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Extractor: extractor,
		Router:    dispatcher,
		Activity:  aggregator,
		Loc:       loc,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "agentcore listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("agentcore is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop agentcore (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to agentcore (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	// Check daemon health.
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	// Check Ollama.
	ollamaResp, err := client.Get(cfg.Ollama.BaseURL + "/api/version")
	if err != nil {
		printStatus("Ollama", "not running")
	} else {
		ollamaResp.Body.Close()
		printStatus("Ollama", "running at %s", cfg.Ollama.BaseURL)
	}

	printStatus("Extract model", "%s", cfg.Ollama.ExtractModel)
	printStatus("Briefing model", "%s", cfg.Ollama.BriefingModel)
	printStatus("Embed model", "%s", cfg.Ollama.EmbedModel)

	if cfg.Calendar.BaseURL != "" {
		printStatus("Calendar", "%s", cfg.Calendar.BaseURL)
	} else {
		printStatus("Calendar", "not configured (local-only mode)")
	}
	if cfg.Archive.BaseURL != "" {
		printStatus("Archive", "%s (folder %s)", cfg.Archive.BaseURL, cfg.Archive.Folder)
	} else {
		printStatus("Archive", "not configured")
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
