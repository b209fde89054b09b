package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cratergraph/cratergraph/src/httpserver"
	"github.com/cratergraph/cratergraph/src/supervisor"
)

// shutdownGrace bounds how long in-flight requests may run after a
// termination signal before the listener is torn down.
const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP surface and the background refresh supervisor",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	metrics := supervisor.NewMetrics(registry)

	progress := func(format string, a ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", a...)
	}

	sup := supervisor.New(cfg.Data.Dir, cfg.Data.TargetsFile, cfg.Supervisor.Interval(), metrics, progress)
	if err := sup.Bootstrap(ctx); err != nil {
		return fmt.Errorf("initial graph build: %w", err)
	}
	fmt.Fprintf(os.Stderr, "loaded graph: %d crates\n", sup.Graph().CrateCount())

	if cfg.Supervisor.WatchDir {
		if err := sup.WatchDataDir(ctx); err != nil {
			return fmt.Errorf("starting data directory watcher: %w", err)
		}
	}

	srv := httpserver.New(sup, cfg.Search.ResultCap, cfg.Server.DefaultTarget, cfg.Server.DefaultCfgName, registry)

	httpSrv := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: srv,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "listening on %s\n", cfg.Server.ListenAddr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	}
}
