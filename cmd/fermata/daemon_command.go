package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fermata/internal/config"
	"fermata/internal/daemon"
	"fermata/internal/enrich"
	"fermata/internal/ipc"
	"fermata/internal/library"
	"fermata/internal/logging"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:          "daemon",
		Short:        "Run the fermata daemon in the foreground",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runDaemon(cmd, cfg, logLevel)
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	return cmd
}

func runDaemon(cmd *cobra.Command, cfg *config.Config, logLevel string) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	runID := time.Now().UTC().Format("20060102T150405Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("fermata-%s.log", runID))
	if logLevel == "" {
		logLevel = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       logLevel,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "fermata.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := library.Open(cfg)
	if err != nil {
		logger.Error("open library store", logging.Error(err))
		return err
	}
	defer store.Close()

	supervisor, err := enrich.NewSupervisor(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("create supervisor: %w", err)
	}

	d, err := daemon.New(cfg, store, supervisor, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		return err
	}
	defer d.Stop()

	select {
	case <-signalCtx.Done():
	case <-d.ShutdownRequested():
	}
	logger.Info("fermata daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
