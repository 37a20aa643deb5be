package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/config"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/lock"
	"github.com/example/room-booking/internal/logging"
	"github.com/example/room-booking/internal/notify"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/postgres"
	"github.com/example/room-booking/internal/persistence/sqlite"
)

// migratingStore is a persistence.Store that also owns its schema.
type migratingStore interface {
	persistence.Store
	Migrate(ctx context.Context) (int64, error)
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	return logging.New(w, cfg.LogLevel, cfg.LogFormat)
}

func openStore(ctx context.Context, cfg config.Config) (migratingStore, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.DefaultPoolConfig())
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	default:
		store, err := sqlite.Open(sqlite.DefaultConfig(cfg.SQLiteDSN))
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	}
}

// newLocker returns a Redis lease locker when an address is configured and an
// in-process locker otherwise. The returned close function is never nil.
func newLocker(ctx context.Context, cfg config.Config, logger *slog.Logger) (application.RoomLocker, func() error, error) {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return lock.NewLocal(), func() error { return nil }, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	locker := lock.NewRedis(rdb, lock.RedisOptions{TTL: cfg.LockTTL, Logger: logger})
	return locker, rdb.Close, nil
}

// newSink publishes to Kafka when brokers are configured and logs otherwise.
func newSink(cfg config.Config, logger *slog.Logger) (notify.Sink, func() error) {
	if len(cfg.KafkaBrokers) == 0 {
		return notify.NewLogSink(logger), func() error { return nil }
	}
	sink := notify.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
	return sink, sink.Close
}

type services struct {
	rooms        *application.RoomService
	availability *application.AvailabilityService
	bookings     *application.BookingService
}

// clockAndIDs supplies the time source and identifier generator shared by the services.
type clockAndIDs struct {
	Now   func() time.Time
	NewID func() string
}

func systemClockAndIDs() clockAndIDs {
	return clockAndIDs{Now: time.Now, NewID: uuid.NewString}
}

func newServices(store persistence.Store, locker application.RoomLocker, notifier application.Notifier, cfg config.Config, env clockAndIDs, logger *slog.Logger) services {
	if env.Now == nil {
		env.Now = time.Now
	}
	if env.NewID == nil {
		env.NewID = uuid.NewString
	}
	bookingStore := newBookingStoreAdapter(store)
	return services{
		rooms:        application.NewRoomServiceWithLogger(newRoomRepositoryAdapter(store), env.NewID, env.Now, logger),
		availability: application.NewAvailabilityService(bookingStore, logger),
		bookings: application.NewBookingService(application.BookingServiceDeps{
			Store:       bookingStore,
			Locker:      locker,
			Notifier:    notifier,
			IDGenerator: env.NewID,
			Now:         env.Now,
			Location:    cfg.Location,
			Logger:      logger,
		}),
	}
}

func newHandler(svc services, checks map[string]httptransport.HealthCheck, cfg config.Config, logger *slog.Logger) http.Handler {
	return httptransport.NewRouter(httptransport.RouterConfig{
		Health:       httptransport.NewHealthHandler(checks, logger),
		Rooms:        httptransport.NewRoomHandler(svc.rooms, logger),
		Availability: httptransport.NewAvailabilityHandler(svc.availability, svc.bookings, logger),
		Bookings:     httptransport.NewBookingHandler(svc.bookings, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequireGatewayToken(cfg.GatewayTokenHash, logger),
			httptransport.RequirePrincipal(logger),
		},
		Logger: logger,
	})
}
