package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
)

type bookingService interface {
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	UpdateBooking(ctx context.Context, params application.UpdateBookingParams) (application.Booking, error)
	CancelBooking(ctx context.Context, params application.CancelBookingParams) (application.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (application.Booking, error)
	ListBookings(ctx context.Context, params application.ListBookingsParams) ([]application.Booking, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create", "room_id", req.RoomID, "booking_date", req.BookingDate)

	booking, err := h.service.CreateBooking(r.Context(), application.CreateBookingParams{
		Principal:   principal,
		RoomID:      strings.TrimSpace(req.RoomID),
		BookingDate: strings.TrimSpace(req.BookingDate),
		StartTime:   strings.TrimSpace(req.StartTime),
		EndTime:     strings.TrimSpace(req.EndTime),
		Notes:       req.Notes,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "booking creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID := pathID(r)
	booking, err := h.service.GetBooking(r.Context(), bookingID)
	if err != nil {
		h.log(r.Context(), "Get", "booking_id", bookingID).WarnContext(r.Context(), "booking lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID := pathID(r)
	if bookingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	var req updateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "booking_id", bookingID, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode booking update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Update", "booking_id", bookingID)

	booking, err := h.service.UpdateBooking(r.Context(), application.UpdateBookingParams{
		Principal:   principal,
		BookingID:   bookingID,
		RoomID:      trimmed(req.RoomID),
		BookingDate: trimmed(req.BookingDate),
		StartTime:   trimmed(req.StartTime),
		EndTime:     trimmed(req.EndTime),
		Notes:       req.Notes,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "booking update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID := pathID(r)
	if bookingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	// The body is optional.
	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Cancel", "booking_id", bookingID)

	booking, err := h.service.CancelBooking(r.Context(), application.CancelBookingParams{
		Principal: principal,
		BookingID: bookingID,
		Reason:    req.Reason,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "booking cancellation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

// ListForRoom serves the confirmed bookings of the room in the path on ?date=.
func (h *BookingHandler) ListForRoom(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params := application.ListBookingsParams{
		RoomID:      pathID(r),
		BookingDate: strings.TrimSpace(r.URL.Query().Get("date")),
	}
	bookings, err := h.service.ListBookings(r.Context(), params)
	if err != nil {
		h.log(r.Context(), "ListForRoom", "room_id", params.RoomID, "booking_date", params.BookingDate).
			WarnContext(r.Context(), "booking list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingDTO(b))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: out})
}

type createBookingRequest struct {
	RoomID      string  `json:"room_id"`
	BookingDate string  `json:"booking_date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Notes       *string `json:"notes"`
}

type updateBookingRequest struct {
	RoomID      *string `json:"room_id"`
	BookingDate *string `json:"booking_date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Notes       *string `json:"notes"`
}

type cancelBookingRequest struct {
	Reason *string `json:"reason"`
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type listBookingsResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

type bookingDTO struct {
	ID                 string  `json:"id"`
	RoomID             string  `json:"room_id"`
	UserID             string  `json:"user_id"`
	BookingDate        string  `json:"booking_date"`
	StartTime          string  `json:"start_time"`
	EndTime            string  `json:"end_time"`
	Status             string  `json:"status"`
	Notes              *string `json:"notes,omitempty"`
	CancelledAt        *string `json:"cancelled_at,omitempty"`
	CancelledBy        *string `json:"cancelled_by,omitempty"`
	CancellationReason *string `json:"cancellation_reason,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

func toBookingDTO(b application.Booking) bookingDTO {
	dto := bookingDTO{
		ID:                 b.ID,
		RoomID:             b.RoomID,
		UserID:             b.UserID,
		BookingDate:        b.BookingDate,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             string(b.Status),
		Notes:              b.Notes,
		CancelledBy:        b.CancelledBy,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:          b.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if b.CancelledAt != nil {
		at := b.CancelledAt.UTC().Format(time.RFC3339Nano)
		dto.CancelledAt = &at
	}
	return dto
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}
