// Package repository persists the portal's own state.  Booking data is owned
// by the remote API; the only table here holds browser sessions.
package repository

import "errors"

// ErrSessionNotFound is returned when a session id is unknown or expired.
// Handlers respond by issuing a fresh session cookie.
var ErrSessionNotFound = errors.New("session not found")
