package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
)

type (
	RoomID     string
	RoomName   string
	Visibility string
)

const (
	VisibilityOpen       Visibility = "open"
	VisibilityApproval   Visibility = "approval"
	VisibilityInviteOnly Visibility = "invite-only"
)

const (
	MinRoomNameLen    = 3
	MaxRoomNameLen    = 64
	MaxDescriptionLen = 256
)

// ParseVisibility accepts the canonical names and the legacy public/request/private aliases.
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "open", "public":
		return VisibilityOpen, nil
	case "approval", "request":
		return VisibilityApproval, nil
	case "invite-only", "invite", "private":
		return VisibilityInviteOnly, nil
	}
	return "", Validation("invalid room visibility %q", s)
}

// Room is the authoritative membership document of a room.
// OwnerID never appears in the sets and the sets are pairwise disjoint.
type Room struct {
	ID              RoomID     `json:"id"`
	Name            RoomName   `json:"name"`
	Description     string     `json:"description,omitempty"`
	Visibility      Visibility `json:"visibility"`
	OwnerID         UserID     `json:"ownerId"`
	Members         []UserID   `json:"members"`
	Moderators      []UserID   `json:"moderators"`
	PendingRequests []UserID   `json:"pendingRequests"`
	Banned          []UserID   `json:"banned"`
	CreatedAt       time.Time  `json:"createdAt"`
	Version         uint64     `json:"version"`
}

// NewRoom validates creation input. The owner is an implicit member.
func NewRoom(id RoomID, name, description string, visibility Visibility, owner UserID, now time.Time) (*Room, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < MinRoomNameLen || n > MaxRoomNameLen {
		return nil, Validation("room name must be between %d and %d characters", MinRoomNameLen, MaxRoomNameLen)
	}
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > MaxDescriptionLen {
		return nil, Validation("room description must be at most %d characters", MaxDescriptionLen)
	}
	switch visibility {
	case VisibilityOpen, VisibilityApproval, VisibilityInviteOnly:
	default:
		return nil, Validation("invalid room visibility %q", visibility)
	}
	if owner == "" {
		return nil, Validation("room owner is required")
	}
	return &Room{
		ID:          id,
		Name:        RoomName(name),
		Description: description,
		Visibility:  visibility,
		OwnerID:     owner,
		CreatedAt:   now.UTC(),
	}, nil
}

// Clone returns a deep copy so a transition can be validated before it is committed.
func (r *Room) Clone() *Room {
	c := *r
	c.Members = cloneIDs(r.Members)
	c.Moderators = cloneIDs(r.Moderators)
	c.PendingRequests = cloneIDs(r.PendingRequests)
	c.Banned = cloneIDs(r.Banned)
	return &c
}

func cloneIDs(ids []UserID) []UserID {
	if ids == nil {
		return nil
	}
	return append([]UserID(nil), ids...)
}

func (r *Room) IsOwner(u UserID) bool     { return r.OwnerID == u }
func (r *Room) IsModerator(u UserID) bool { return lo.Contains(r.Moderators, u) }
func (r *Room) IsMember(u UserID) bool    { return lo.Contains(r.Members, u) }
func (r *Room) IsPending(u UserID) bool   { return lo.Contains(r.PendingRequests, u) }
func (r *Room) IsBanned(u UserID) bool    { return lo.Contains(r.Banned, u) }

// Detach removes u from every membership set.
func (r *Room) Detach(u UserID) {
	r.Members = lo.Without(r.Members, u)
	r.Moderators = lo.Without(r.Moderators, u)
	r.PendingRequests = lo.Without(r.PendingRequests, u)
	r.Banned = lo.Without(r.Banned, u)
}

// Place moves u into exactly one set, keeping the sets disjoint.
func (r *Room) Place(u UserID, set *[]UserID) {
	r.Detach(u)
	*set = append(*set, u)
}

// MemberCount counts everyone allowed to post in a closed room, owner included.
func (r *Room) MemberCount() int { return 1 + len(r.Members) + len(r.Moderators) }

// Managers are the users notified about join requests.
func (r *Room) Managers() []UserID {
	return append([]UserID{r.OwnerID}, r.Moderators...)
}
