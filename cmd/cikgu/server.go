package main

import (
	"context"
	"encoding/json"
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

	"github.com/cikgulab/cikguplanner/internal/api"
	"github.com/cikgulab/cikguplanner/internal/archive"
	"github.com/cikgulab/cikguplanner/internal/config"
	"github.com/cikgulab/cikguplanner/internal/gemini"
	"github.com/cikgulab/cikguplanner/internal/rph"
	"github.com/cikgulab/cikguplanner/internal/rpt"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cikgu daemon (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running cikgu daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cikgu daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "cikgu.pid")
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

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "cikgu version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	})))

	// Refuse to start a second daemon. The health probe catches a live
	// server even when a stale PID file was left behind.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("cikgu is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("cikgu is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the durable RPH archive.
	slot, err := archive.OpenSlot(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := slot.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	arch, err := archive.Open(slot)
	if err != nil {
		return fmt.Errorf("loading archive: %w", err)
	}
	slog.Info("archive loaded", "saved_rphs", arch.Len())
	cal := archive.NewCalendar(arch)

	// Inference wiring: one Gemini client shared by both roles.
	client := gemini.New(cfg.Gemini.APIKey)
	extractor := rpt.NewExtractor(client, cfg.Gemini.Model)
	generator := rph.NewGenerator(client, cfg.Gemini.Model)
	weeks := rpt.NewWeekStore()

	handler := api.NewHandler(api.Deps{
		Extractor: extractor,
		Generator: generator,
		Weeks:     weeks,
		Archive:   arch,
		Calendar:  cal,
		Token:     cfg.Server.Token,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// MCP server on stdio, for agent clients attached to the daemon.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Extractor: extractor,
		Generator: generator,
		Weeks:     weeks,
		Archive:   arch,
		Calendar:  cal,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "cikgu listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		if os.IsNotExist(err) {
			printWarning("cikgu does not appear to be running (no PID file)")
			return nil
		}
		return fmt.Errorf("reading PID file: %w", err)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		removePIDFile(pidPath)
		return fmt.Errorf("finding process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		removePIDFile(pidPath)
		printWarning("process %d not running, removed stale PID file", pid)
		return nil
	}

	printSuccess("Sent SIGTERM to cikgu (PID %d)", pid)
	return nil
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, colorize(colorBold, "cikgu status"))
	printStatus("Version", "%s", version)
	printStatus("Port", "%d", cfg.Server.Port)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	printStatus("Model", "%s", cfg.Gemini.Model)

	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := healthClient.Get(healthURL)
	if err != nil {
		printStatus("Server", "not running")
		return nil
	}
	resp.Body.Close()
	printStatus("Server", "running")

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	var weeksResp []json.RawMessage
	if resp, err := client.get(ctx, "/weeks"); err == nil {
		if err := decodeJSON(resp, &weeksResp); err == nil {
			printStatus("Weeks loaded", "%d", len(weeksResp))
		}
	}
	var rphResp []json.RawMessage
	if resp, err := client.get(ctx, "/rph"); err == nil {
		if err := decodeJSON(resp, &rphResp); err == nil {
			printStatus("Saved RPHs", "%d", len(rphResp))
		}
	}
	return nil
}
