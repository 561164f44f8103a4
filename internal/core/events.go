package core

import (
	"time"

	"github.com/dkeye/Chat/internal/domain"
)

type EventType string

const (
	EventMessage            EventType = "room:message"
	EventUserEvent          EventType = "room:userEvent"
	EventRequestCreated     EventType = "room:requestCreated"
	EventRequestResolved    EventType = "room:requestResolved"
	EventMembershipApproved EventType = "room:membershipApproved"
	EventMembershipDenied   EventType = "room:membershipDenied"
	EventMemberAction       EventType = "room:memberAction"
	EventMembershipUpdate   EventType = "room:membershipUpdate"
)

// Event is what the dispatcher writes to connections.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

type MessagePayload struct {
	ID        domain.MessageID `json:"id"`
	RoomID    domain.RoomID    `json:"roomId"`
	SenderID  domain.UserID    `json:"senderId"`
	Username  string           `json:"username"`
	Text      string           `json:"text"`
	Timestamp time.Time        `json:"timestamp"`
}

func NewMessagePayload(m domain.Message) MessagePayload {
	return MessagePayload{
		ID:        m.ID,
		RoomID:    m.RoomID,
		SenderID:  m.SenderID,
		Username:  m.SenderName,
		Text:      m.Text,
		Timestamp: m.Timestamp,
	}
}

type UserEventPayload struct {
	RoomID  domain.RoomID `json:"roomId"`
	Message string        `json:"message"`
}

type RequestCreatedPayload struct {
	RoomID       domain.RoomID   `json:"roomId"`
	RoomName     domain.RoomName `json:"roomName"`
	PendingCount int             `json:"pendingCount"`
	Request      domain.UserRef  `json:"request"`
}

type RequestResolvedPayload struct {
	RoomID       domain.RoomID   `json:"roomId"`
	RoomName     domain.RoomName `json:"roomName"`
	PendingCount int             `json:"pendingCount"`
	MemberCount  int             `json:"memberCount"`
	Request      domain.UserRef  `json:"request"`
	Action       string          `json:"action"`
	PerformedBy  domain.UserRef  `json:"performedBy"`
}

// MembershipDecisionPayload backs both room:membershipApproved and room:membershipDenied.
type MembershipDecisionPayload struct {
	RoomID   domain.RoomID   `json:"roomId"`
	RoomName domain.RoomName `json:"roomName"`
	Room     *RoomView       `json:"room,omitempty"`
}

type MemberActionPayload struct {
	RoomID         domain.RoomID  `json:"roomId"`
	Action         string         `json:"action"`
	User           domain.UserRef `json:"user"`
	Actor          domain.UserRef `json:"actor"`
	MemberCount    int            `json:"memberCount"`
	ModeratorCount int            `json:"moderatorCount"`
	BannedCount    int            `json:"bannedCount"`
	Role           domain.Role    `json:"role"`
}

type MembershipUpdatePayload struct {
	RoomID   domain.RoomID   `json:"roomId"`
	RoomName domain.RoomName `json:"roomName"`
	Action   string          `json:"action"`
	Role     domain.Role     `json:"role"`
	Banned   bool            `json:"banned"`
}

// RoomView is a room rendered for one viewer, shared by REST reads and events.
type RoomView struct {
	ID                domain.RoomID      `json:"id"`
	Name              domain.RoomName    `json:"name"`
	Description       string             `json:"description,omitempty"`
	Visibility        domain.Visibility  `json:"visibility"`
	Owner             string             `json:"owner"`
	OwnerID           domain.UserID      `json:"ownerId"`
	MemberCount       int                `json:"memberCount"`
	ModeratorCount    int                `json:"moderatorCount"`
	PendingCount      int                `json:"pendingCount"`
	BannedCount       int                `json:"bannedCount"`
	Role              domain.Role        `json:"role"`
	IsOwner           bool               `json:"isOwner"`
	IsModerator       bool               `json:"isModerator"`
	IsMember          bool               `json:"isMember"`
	HasPendingRequest bool               `json:"hasPendingRequest"`
	IsBanned          bool               `json:"isBanned"`
	Permissions       domain.Permissions `json:"permissions"`
	CreatedAt         time.Time          `json:"createdAt"`
}
