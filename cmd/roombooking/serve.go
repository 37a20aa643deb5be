package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/room-booking/internal/application"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/notify"
)

func newServeCmd(rt *cli) *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the maintenance loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.load(); err != nil {
				return err
			}
			return serve(cmd.Context(), rt, migrateUp)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", false, "apply database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

func serve(ctx context.Context, rt *cli, migrateUp bool) error {
	cfg, logger := rt.cfg, rt.logger

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if migrateUp {
		version, err := store.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.InfoContext(ctx, "schema up to date", "version", version)
	}

	locker, closeLocker, err := newLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	sink, closeSink := newSink(cfg, logger)
	defer closeSink()
	dispatcher := notify.NewDispatcher(sink, notify.DispatcherOptions{QueueSize: cfg.NotifyQueueSize, Logger: logger})

	svc := newServices(store, locker, dispatcher, cfg, systemClockAndIDs(), logger)

	checks := map[string]httptransport.HealthCheck{"store": store.Ping}
	if len(cfg.KafkaBrokers) > 0 {
		checks["kafka"] = notify.ReadyCheck(cfg.KafkaBrokers)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           newHandler(svc, checks, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", server.Addr, err)
	}

	// Deferred in LIFO order: workers stop, then the sink, locker and store close. All of
	// them run after runServer has returned, which happens only once in-flight requests
	// have drained.
	workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(ctx))
	var workers sync.WaitGroup
	workers.Add(2)
	go func() {
		defer workers.Done()
		dispatcher.Run(workerCtx)
	}()
	go func() {
		defer workers.Done()
		application.NewMaintenanceRunner(svc.bookings, cfg.SweepInterval, cfg.ReminderLead, logger).Run(workerCtx)
	}()
	defer func() {
		stopWorkers()
		workers.Wait()
	}()

	logger.InfoContext(ctx, "room booking API listening", "addr", ln.Addr().String(), "driver", cfg.StoreDriver, "timezone", cfg.Timezone)
	return runServer(ctx, server, ln, shutdownTimeout, logger)
}

const shutdownTimeout = 10 * time.Second

// runServer serves on ln until ctx is cancelled and returns only after Shutdown has
// finished draining in-flight requests.
func runServer(ctx context.Context, server *http.Server, ln net.Listener, timeout time.Duration, logger *slog.Logger) error {
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	<-shutdownDone
	return nil
}
