package core

import "github.com/dkeye/Chat/internal/domain"

// ConnID identifies one live connection (a tab or a device).
type ConnID string

// Session binds an authenticated user to one transport endpoint.
type Session struct {
	ID     ConnID
	User   domain.User
	Signal SignalConnection
}
