//go:generate go run go.uber.org/mock/mockgen -source=store_iface.go -destination=../mocks/mock_store.go -package=mocks
package core

import (
	"context"

	"github.com/dkeye/Chat/internal/domain"
)

// RoomStore persists room documents.
// LoadRoom returns a NotFound domain error for unknown rooms.
// SaveRoom rejects a room whose Version differs from the stored one with
// domain.ErrStaleRoom and returns the committed room with the next version.
type RoomStore interface {
	CreateRoom(ctx context.Context, room *domain.Room) (*domain.Room, error)
	LoadRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	SaveRoom(ctx context.Context, room *domain.Room) (*domain.Room, error)
	ListRooms(ctx context.Context) ([]*domain.Room, error)
}

// MessageStore is append-only. QueryHistory returns the most recent messages
// in ascending order.
type MessageStore interface {
	AppendMessage(ctx context.Context, msg domain.Message) (domain.Message, error)
	QueryHistory(ctx context.Context, roomID domain.RoomID, limit int) ([]domain.Message, error)
}

// UserDirectory caches identities seen on authenticated connections.
type UserDirectory interface {
	RememberUser(ctx context.Context, user domain.User) error
	LookupUser(ctx context.Context, id domain.UserID) (domain.User, error)
	LookupUsername(ctx context.Context, username string) (domain.User, error)
}

// IdentityVerifier turns a bearer token into a user or an Authentication error.
type IdentityVerifier interface {
	VerifyIdentity(ctx context.Context, token string) (domain.User, error)
}
