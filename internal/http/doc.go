// Package http provides HTTP handlers and middleware for the room booking API.
//
// The router exposes the following endpoints:
//   - GET /healthz: liveness plus dependency checks. Returns 503 when any check fails.
//   - GET /rooms, POST /rooms, GET /rooms/{id}, PUT /rooms/{id}: room catalogue
//     endpoints exchanging the `roomDTO` payload defined in room_handler.go. Reads are
//     open to any principal while writes require the admin role.
//   - GET /rooms/{id}/availability?date=YYYY-MM-DD: the slot grid for one day.
//   - GET /rooms/{id}/availability/check?date=&start=&end=&exclude=: whether one
//     interval is free, optionally ignoring the booking being edited.
//   - GET /rooms/{id}/bookings?date=: confirmed bookings of a room on a date.
//   - POST /bookings, GET /bookings/{id}, PATCH /bookings/{id},
//     POST /bookings/{id}/cancel: booking endpoints exchanging the `bookingDTO`
//     payload defined in booking_handler.go.
//
// Callers arrive through an authenticating gateway. RequireGatewayToken checks the
// gateway's bearer token and RequirePrincipal reads the user from the X-User-ID and
// X-User-Role headers the gateway sets.
package http
