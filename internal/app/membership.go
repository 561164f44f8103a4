package app

import (
	"github.com/dkeye/Chat/internal/domain"
	"github.com/samber/lo"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionDeny    Action = "deny"
	ActionPromote Action = "promote"
	ActionDemote  Action = "demote"
	ActionRemove  Action = "remove"
	ActionBan     Action = "ban"
	ActionUnban   Action = "unban"
	ActionInvite  Action = "invite"
	ActionLeave   Action = "leave"
)

var (
	resolveActions = []Action{ActionApprove, ActionDeny}
	updateActions  = []Action{ActionPromote, ActionDemote, ActionRemove, ActionBan, ActionUnban}
)

// Transition is the outcome of one membership change. Room is a modified
// clone of the input and is only meaningful when Changed is set.
type Transition struct {
	Room    *domain.Room
	Target  domain.UserID
	Before  domain.Role
	After   domain.Role
	Changed bool
}

func transition(room *domain.Room, target domain.UserID, before domain.Role) Transition {
	return Transition{Room: room, Target: target, Before: before, After: RoleOf(room, target)}
}

// Join computes the result of user asking to enter room.
// Re-requesting a pending approval is a no-op and Changed stays false.
func Join(room *domain.Room, user domain.UserID) (Transition, error) {
	before := RoleOf(room, user)
	next := room.Clone()
	switch CanJoin(room, before) {
	case AlreadyJoined:
		return transition(next, user, before), nil
	case JoinAsMember:
		next.Place(user, &next.Members)
	case JoinAsPending:
		if before == domain.RolePending {
			return transition(next, user, before), nil
		}
		next.Place(user, &next.PendingRequests)
	default:
		if before == domain.RoleBanned {
			return Transition{}, domain.Authorization("You are banned from this room")
		}
		return Transition{}, domain.Authorization("You do not have access to this private room")
	}
	t := transition(next, user, before)
	t.Changed = true
	return t, nil
}

// Resolve approves or denies a pending join request.
func Resolve(room *domain.Room, actor, target domain.UserID, action Action) (Transition, error) {
	if !lo.Contains(resolveActions, action) {
		return Transition{}, domain.Validation("Invalid action")
	}
	if !CanManageMembers(RoleOf(room, actor)) {
		return Transition{}, domain.Authorization("You do not have permission to manage requests for this room")
	}
	before := RoleOf(room, target)
	next := room.Clone()
	if action == ActionApprove && IsParticipant(before) {
		// stale request: drop any leftover entry, the user keeps their role
		stale := next.IsPending(target)
		next.PendingRequests = lo.Without(next.PendingRequests, target)
		t := transition(next, target, before)
		t.Changed = stale
		return t, nil
	}
	if !room.IsPending(target) {
		return Transition{}, domain.NotFound("No pending request found for this user")
	}
	if action == ActionApprove {
		next.Place(target, &next.Members)
	} else {
		next.Detach(target)
	}
	t := transition(next, target, before)
	t.Changed = true
	return t, nil
}

// Update applies a moderation action. Guards run in order: action, actor
// permission, owner immutability, hierarchy for remove and ban, then
// target state.
func Update(room *domain.Room, actor, target domain.UserID, action Action) (Transition, error) {
	if !lo.Contains(updateActions, action) {
		return Transition{}, domain.Validation("Invalid action")
	}
	actorRole := RoleOf(room, actor)
	switch action {
	case ActionPromote, ActionDemote:
		if !CanPromoteOrDemote(actorRole) {
			return Transition{}, domain.Authorization("Only the room owner can promote or demote members")
		}
	default:
		if !CanManageMembers(actorRole) {
			return Transition{}, domain.Authorization("You do not have permission to manage members of this room")
		}
	}
	before := RoleOf(room, target)
	if before == domain.RoleOwner {
		return Transition{}, domain.Authorization("The room owner cannot be modified")
	}
	if action == ActionRemove || action == ActionBan {
		if !CanActOnTarget(actorRole, before) {
			if before == domain.RoleModerator {
				return Transition{}, domain.Authorization("Only the room owner can act on moderators")
			}
			return Transition{}, domain.Authorization("Moderators can only remove or ban members")
		}
	}

	next := room.Clone()
	switch action {
	case ActionPromote:
		if before != domain.RoleMember {
			return Transition{}, domain.Conflict("Only members can be promoted")
		}
		next.Place(target, &next.Moderators)
	case ActionDemote:
		if before != domain.RoleModerator {
			return Transition{}, domain.Conflict("User is not a moderator")
		}
		next.Place(target, &next.Members)
	case ActionRemove:
		if !IsParticipant(before) {
			return Transition{}, domain.Conflict("User is not a member of this room")
		}
		next.Detach(target)
	case ActionBan:
		if before == domain.RoleBanned {
			return Transition{}, domain.Conflict("User is already banned")
		}
		next.Place(target, &next.Banned)
	case ActionUnban:
		if before != domain.RoleBanned {
			return Transition{}, domain.Conflict("User is not banned")
		}
		next.Detach(target)
	}
	t := transition(next, target, before)
	t.Changed = true
	return t, nil
}

// Leave drops the user's own membership. The owner cannot leave and
// banned users stay banned; both are unchanged no-ops.
func Leave(room *domain.Room, user domain.UserID) Transition {
	before := RoleOf(room, user)
	next := room.Clone()
	switch before {
	case domain.RoleMember, domain.RoleModerator, domain.RolePending:
		next.Detach(user)
		t := transition(next, user, before)
		t.Changed = true
		return t
	}
	return transition(next, user, before)
}

// Invite grants membership directly, clearing any pending request.
// Inviting an existing participant is a no-op.
func Invite(room *domain.Room, actor, target domain.UserID) (Transition, error) {
	if !CanManageMembers(RoleOf(room, actor)) {
		return Transition{}, domain.Authorization("You do not have permission to manage this room")
	}
	if room.Visibility == domain.VisibilityOpen {
		return Transition{}, domain.Validation("Invites are only available for private rooms")
	}
	before := RoleOf(room, target)
	next := room.Clone()
	switch {
	case before == domain.RoleOwner:
		return Transition{}, domain.Validation("User already owns this room")
	case before == domain.RoleBanned:
		return Transition{}, domain.Conflict("User is banned from this room")
	case IsParticipant(before):
		return transition(next, target, before), nil
	}
	next.Place(target, &next.Members)
	t := transition(next, target, before)
	t.Changed = true
	return t, nil
}
