// Clean City stub server
//
// Serves a local replica of the Clean City application with any of the ten
// reported defects switched on, so the regression suite can be checked
// against a known-good and a known-buggy build.
//
// Usage:
//
//	go run ./cmd/cleancity-stub --addr :8080
//	go run ./cmd/cleancity-stub --bug eldoret-filter,open-admin
//	go run ./cmd/cleancity-stub --all-bugs
//
// Point the suite at it with BUGBUSTERS_BASE_URL=http://localhost:8080.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleancity/bugbusters/cmd/cleancity-stub/server"
	"github.com/cleancity/bugbusters/pkg/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr     string
		bugs     []string
		allBugs  bool
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "cleancity-stub",
		Short: "Serve a local Clean City replica with switchable defects",
		Long: "Serve a local Clean City replica with switchable defects.\n\nKnown bugs: " +
			strings.Join(config.AllBugs, ", "),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := config.NewLogger(logLevel, "stub")

			cfg := server.DefaultConfig()
			cfg.Addr = addr
			cfg.Bugs = bugs
			if allBugs {
				cfg.Bugs = config.AllBugs
			}
			cfg.Logger = logger

			srv, err := server.NewServer(cfg)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			if _, err := srv.Start(); err != nil {
				return fmt.Errorf("start server: %w", err)
			}
			for _, id := range cfg.Bugs {
				logger.Warn("defect enabled", "bug", id)
			}
			logger.Info("ready", "url", srv.URL())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringSliceVar(&bugs, "bug", nil, "defect to enable (repeatable or comma-separated)")
	cmd.Flags().BoolVar(&allBugs, "all-bugs", false, "enable every known defect")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	return cmd
}
