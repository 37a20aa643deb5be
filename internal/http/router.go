package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type RouterConfig struct {
	Health       *HealthHandler
	Rooms        *RoomHandler
	Availability *AvailabilityHandler
	Bookings     *BookingHandler
	// Middleware wraps every route except /healthz, outermost first.
	Middleware []func(http.Handler) http.Handler
	Logger     *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)
	responder := newResponder(logger)

	root := mux.NewRouter()
	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.writeError(r.Context(), w, http.StatusNotFound, nil)
	})
	root.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.writeJSON(r.Context(), w, http.StatusMethodNotAllowed, errorResponse{
			ErrorCode: "METHOD_NOT_ALLOWED",
			Message:   http.StatusText(http.StatusMethodNotAllowed),
		})
	})

	if cfg.Health != nil {
		root.HandleFunc("/healthz", cfg.Health.Healthz).Methods(http.MethodGet)
	}

	api := root.NewRoute().Subrouter()
	for _, mw := range cfg.Middleware {
		if mw != nil {
			api.Use(mux.MiddlewareFunc(mw))
		}
	}

	if cfg.Rooms != nil {
		api.HandleFunc("/rooms", cfg.Rooms.List).Methods(http.MethodGet)
		api.HandleFunc("/rooms", cfg.Rooms.Create).Methods(http.MethodPost)
		api.HandleFunc("/rooms/{id}", cfg.Rooms.Get).Methods(http.MethodGet)
		api.HandleFunc("/rooms/{id}", cfg.Rooms.Update).Methods(http.MethodPut)
	}

	if cfg.Availability != nil {
		api.HandleFunc("/rooms/{id}/availability", cfg.Availability.Slots).Methods(http.MethodGet)
		api.HandleFunc("/rooms/{id}/availability/check", cfg.Availability.Check).Methods(http.MethodGet)
	}

	if cfg.Bookings != nil {
		api.HandleFunc("/rooms/{id}/bookings", cfg.Bookings.ListForRoom).Methods(http.MethodGet)
		api.HandleFunc("/bookings", cfg.Bookings.Create).Methods(http.MethodPost)
		api.HandleFunc("/bookings/{id}", cfg.Bookings.Get).Methods(http.MethodGet)
		api.HandleFunc("/bookings/{id}", cfg.Bookings.Update).Methods(http.MethodPatch)
		api.HandleFunc("/bookings/{id}/cancel", cfg.Bookings.Cancel).Methods(http.MethodPost)
	}

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: logger}),
		handlers.PrintRecoveryStack(false),
	)
	return recovery(RequestLogger(logger)(root))
}

// recoveryLogger adapts slog to the gorilla recovery logger interface.
type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("panic recovered", "panic", fmt.Sprint(v...))
}
