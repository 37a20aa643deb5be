package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-booking/internal/application"
)

type availabilityService interface {
	GetRoomAvailability(ctx context.Context, roomID, bookingDate string) (application.RoomAvailability, error)
}

type availabilityChecker interface {
	CheckAvailability(ctx context.Context, params application.CheckAvailabilityParams) (bool, error)
}

// AvailabilityHandler serves slot grids and single interval checks.
type AvailabilityHandler struct {
	slots     availabilityService
	checker   availabilityChecker
	responder responder
	logger    *slog.Logger
}

func NewAvailabilityHandler(slots availabilityService, checker availabilityChecker, logger *slog.Logger) *AvailabilityHandler {
	base := defaultLogger(logger)
	return &AvailabilityHandler{slots: slots, checker: checker, responder: newResponder(base), logger: base}
}

func (h *AvailabilityHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "AvailabilityHandler", operation, attrs...)
}

func (h *AvailabilityHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.slots == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID := pathID(r)
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	availability, err := h.slots.GetRoomAvailability(r.Context(), roomID, date)
	if err != nil {
		h.log(r.Context(), "Slots", "room_id", roomID, "booking_date", date).
			WarnContext(r.Context(), "availability lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := availabilityResponse{
		RoomID:      availability.RoomID,
		BookingDate: availability.BookingDate,
		Slots:       make([]slotDTO, 0, len(availability.Slots)),
	}
	for _, slot := range availability.Slots {
		resp.Slots = append(resp.Slots, slotDTO{StartTime: slot.StartTime, EndTime: slot.EndTime, IsAvailable: slot.IsAvailable})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.checker == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	params := application.CheckAvailabilityParams{
		RoomID:           pathID(r),
		BookingDate:      strings.TrimSpace(query.Get("date")),
		StartTime:        strings.TrimSpace(query.Get("start")),
		EndTime:          strings.TrimSpace(query.Get("end")),
		ExcludeBookingID: strings.TrimSpace(query.Get("exclude")),
	}
	available, err := h.checker.CheckAvailability(r.Context(), params)
	if err != nil {
		h.log(r.Context(), "Check", "room_id", params.RoomID, "booking_date", params.BookingDate).
			WarnContext(r.Context(), "availability check failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, checkResponse{
		RoomID:      params.RoomID,
		BookingDate: params.BookingDate,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		Available:   available,
	})
}

type slotDTO struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

type availabilityResponse struct {
	RoomID      string    `json:"room_id"`
	BookingDate string    `json:"booking_date"`
	Slots       []slotDTO `json:"slots"`
}

type checkResponse struct {
	RoomID      string `json:"room_id"`
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Available   bool   `json:"available"`
}
