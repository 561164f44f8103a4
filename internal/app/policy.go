package app

import (
	"errors"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

// RoleOf derives the single role of user in room. Banned dominates every
// other role, even when the disjointness invariant has been violated.
func RoleOf(room *domain.Room, user domain.UserID) domain.Role {
	switch {
	case room == nil || user == "":
		return domain.RoleGuest
	case room.IsBanned(user):
		return domain.RoleBanned
	case room.IsOwner(user):
		return domain.RoleOwner
	case room.IsModerator(user):
		return domain.RoleModerator
	case room.IsMember(user):
		return domain.RoleMember
	case room.IsPending(user):
		return domain.RolePending
	default:
		return domain.RoleGuest
	}
}

func CanManageMembers(role domain.Role) bool {
	return role == domain.RoleOwner || role == domain.RoleModerator
}

// CanPromoteOrDemote: only the owner changes moderator status.
func CanPromoteOrDemote(role domain.Role) bool {
	return role == domain.RoleOwner
}

// CanActOnTarget reports whether actor may remove or ban target.
// The owner is never a valid target. Moderators act on members only;
// everything else below the owner is reserved to the owner.
func CanActOnTarget(actor, target domain.Role) bool {
	switch {
	case target == domain.RoleOwner:
		return false
	case actor == domain.RoleOwner:
		return true
	case actor == domain.RoleModerator:
		return target == domain.RoleMember
	default:
		return false
	}
}

// IsParticipant is true for roles that belong to the room's conversation.
func IsParticipant(role domain.Role) bool {
	return role == domain.RoleOwner || role == domain.RoleModerator || role == domain.RoleMember
}

func CanSendMessage(room *domain.Room, role domain.Role) bool {
	if role == domain.RoleBanned {
		return false
	}
	if room.Visibility == domain.VisibilityOpen {
		return true
	}
	return IsParticipant(role)
}

// CanReadHistory follows the send rule: open rooms are readable by any
// non-banned user, closed rooms only by participants.
func CanReadHistory(room *domain.Room, role domain.Role) bool {
	return CanSendMessage(room, role)
}

type JoinDecision int

const (
	JoinDenied JoinDecision = iota
	JoinAsMember
	JoinAsPending
	AlreadyJoined
)

func CanJoin(room *domain.Room, role domain.Role) JoinDecision {
	if role == domain.RoleBanned {
		return JoinDenied
	}
	if IsParticipant(role) {
		return AlreadyJoined
	}
	switch room.Visibility {
	case domain.VisibilityOpen:
		return JoinAsMember
	case domain.VisibilityApproval:
		return JoinAsPending
	default:
		return JoinDenied
	}
}

func PermissionsOf(role domain.Role) domain.Permissions {
	return domain.Permissions{
		CanManage:   CanManageMembers(role),
		CanPromote:  CanPromoteOrDemote(role),
		CurrentRole: role,
	}
}

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

// Policy decides what happens to a connection whose send buffer is full.
type Policy interface {
	OnBackPressure(conn core.ConnID, err error) BackpressureAction
}

// SimplePolicy drops the event for slow readers and forgets closed connections.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(_ core.ConnID, err error) BackpressureAction {
	if errors.Is(err, core.ErrConnectionClosed) {
		return KickMember
	}
	return DropFrame
}

// StrictPolicy disconnects any connection that cannot keep up.
type StrictPolicy struct{}

func (StrictPolicy) OnBackPressure(core.ConnID, error) BackpressureAction {
	return KickMember
}
