package orch

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/samber/lo"
)

// FormatRoom renders room for viewer. REST reads and real-time events use
// it so derived role and permission fields always agree.
func (o *Orchestrator) FormatRoom(ctx context.Context, room *domain.Room, viewer domain.UserID) core.RoomView {
	role := app.RoleOf(room, viewer)
	return core.RoomView{
		ID:                room.ID,
		Name:              room.Name,
		Description:       room.Description,
		Visibility:        room.Visibility,
		Owner:             o.userRef(ctx, room.OwnerID).Username,
		OwnerID:           room.OwnerID,
		MemberCount:       room.MemberCount(),
		ModeratorCount:    len(room.Moderators),
		PendingCount:      len(room.PendingRequests),
		BannedCount:       len(room.Banned),
		Role:              role,
		IsOwner:           role == domain.RoleOwner,
		IsModerator:       role == domain.RoleModerator,
		IsMember:          app.IsParticipant(role),
		HasPendingRequest: role == domain.RolePending,
		IsBanned:          role == domain.RoleBanned,
		Permissions:       app.PermissionsOf(role),
		CreatedAt:         room.CreatedAt,
	}
}

// ListRooms returns the rooms viewer can discover: every open and approval
// room, and invite-only rooms the viewer already has a role in.
func (o *Orchestrator) ListRooms(ctx context.Context, viewer domain.UserID) ([]core.RoomView, error) {
	return o.listRooms(ctx, viewer, func(room *domain.Room, role domain.Role) bool {
		return room.Visibility != domain.VisibilityInviteOnly || role != domain.RoleGuest
	})
}

// JoinedRooms returns the rooms where viewer is owner, moderator or member.
func (o *Orchestrator) JoinedRooms(ctx context.Context, viewer domain.UserID) ([]core.RoomView, error) {
	return o.listRooms(ctx, viewer, func(_ *domain.Room, role domain.Role) bool {
		return app.IsParticipant(role)
	})
}

func (o *Orchestrator) listRooms(ctx context.Context, viewer domain.UserID, keep func(*domain.Room, domain.Role) bool) ([]core.RoomView, error) {
	rooms, err := o.Store.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	out := make([]core.RoomView, 0, len(rooms))
	for _, room := range rooms {
		if keep(room, app.RoleOf(room, viewer)) {
			out = append(out, o.FormatRoom(ctx, room, viewer))
		}
	}
	slices.SortFunc(out, func(a, b core.RoomView) int {
		return strings.Compare(strings.ToLower(string(a.Name)), strings.ToLower(string(b.Name)))
	})
	return out, nil
}

func (o *Orchestrator) GetRoom(ctx context.Context, viewer domain.UserID, roomID domain.RoomID) (core.RoomView, error) {
	room, err := o.Store.LoadRoom(ctx, roomID)
	if err != nil {
		return core.RoomView{}, err
	}
	if room.Visibility == domain.VisibilityInviteOnly && app.RoleOf(room, viewer) == domain.RoleGuest {
		return core.RoomView{}, domain.Authorization("You do not have access to this private room")
	}
	return o.FormatRoom(ctx, room, viewer), nil
}

// Members lists the participants of a room. The banned list is only shown
// to managers.
func (o *Orchestrator) Members(ctx context.Context, viewer domain.UserID, roomID domain.RoomID) (MembersResult, error) {
	room, err := o.Store.LoadRoom(ctx, roomID)
	if err != nil {
		return MembersResult{}, err
	}
	if !app.CanReadHistory(room, app.RoleOf(room, viewer)) {
		return MembersResult{}, domain.Authorization("You are not a member of this room")
	}
	return o.members(ctx, room, viewer), nil
}

func (o *Orchestrator) members(ctx context.Context, room *domain.Room, viewer domain.UserID) MembersResult {
	role := app.RoleOf(room, viewer)
	res := MembersResult{
		Members:     make([]domain.Member, 0, room.MemberCount()),
		Banned:      []domain.Member{},
		Permissions: app.PermissionsOf(role),
	}
	add := func(id domain.UserID, r domain.Role) {
		ref := o.userRef(ctx, id)
		res.Members = append(res.Members, domain.Member{ID: id, Username: ref.Username, Role: r, Online: o.Registry.IsOnline(id)})
	}
	add(room.OwnerID, domain.RoleOwner)
	for _, id := range room.Moderators {
		add(id, domain.RoleModerator)
	}
	for _, id := range room.Members {
		add(id, domain.RoleMember)
	}
	if app.CanManageMembers(role) {
		res.Banned = lo.Map(room.Banned, func(id domain.UserID, _ int) domain.Member {
			return domain.Member{ID: id, Username: o.userRef(ctx, id).Username, Role: domain.RoleBanned}
		})
	}
	return res
}

// PendingRequests lists join requests awaiting a decision.
func (o *Orchestrator) PendingRequests(ctx context.Context, viewer domain.UserID, roomID domain.RoomID) ([]domain.UserRef, error) {
	room, err := o.Store.LoadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !app.CanManageMembers(app.RoleOf(room, viewer)) {
		return nil, domain.Authorization("You do not have permission to manage requests for this room")
	}
	return lo.Map(room.PendingRequests, func(id domain.UserID, _ int) domain.UserRef {
		return o.userRef(ctx, id)
	}), nil
}
