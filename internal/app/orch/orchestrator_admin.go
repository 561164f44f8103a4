package orch

import (
	"context"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

type ResolveResult struct {
	Status       string `json:"-"`
	Message      string `json:"-"`
	PendingCount int    `json:"pendingCount"`
	MemberCount  int    `json:"memberCount"`
}

type MembersResult struct {
	Status      string             `json:"-"`
	Message     string             `json:"-"`
	Members     []domain.Member    `json:"members"`
	Banned      []domain.Member    `json:"banned"`
	Permissions domain.Permissions `json:"permissions"`
}

type InviteResult struct {
	Status  string         `json:"-"`
	Message string         `json:"-"`
	Room    *core.RoomView `json:"room,omitempty"`
}

var updateMessages = map[app.Action]string{
	app.ActionPromote: "User promoted to moderator",
	app.ActionDemote:  "Moderator demoted to member",
	app.ActionRemove:  "User removed from room",
	app.ActionBan:     "User banned from room",
	app.ActionUnban:   "User unbanned",
}

// ResolveRequest approves or denies a pending join request.
func (o *Orchestrator) ResolveRequest(ctx context.Context, conn core.ConnID, roomID domain.RoomID, target domain.UserID, action app.Action) (ResolveResult, error) {
	actor, err := o.sessionUser(conn)
	if err != nil {
		return ResolveResult{}, err
	}
	var res ResolveResult
	err = o.inRoom(ctx, roomID, func(ctx context.Context, _ *core.RoomState, room *domain.Room) error {
		tr, err := app.Resolve(room, actor.ID, target, action)
		if err != nil {
			return err
		}
		saved, err := o.commit(ctx, tr)
		if err != nil {
			return err
		}
		res = ResolveResult{
			Status:       StatusSuccess,
			PendingCount: len(saved.PendingRequests),
			MemberCount:  saved.MemberCount(),
		}
		if tr.Before != domain.RolePending {
			res.Message = "User is already a member of this room"
			return nil
		}
		res.Message = "Request denied"
		if action == app.ActionApprove {
			res.Message = "Request approved"
		}

		requester := o.userRef(ctx, target)
		o.Dispatcher.EmitToUsers(saved.Managers(), core.Event{
			Type: core.EventRequestResolved,
			Data: core.RequestResolvedPayload{
				RoomID:       saved.ID,
				RoomName:     saved.Name,
				PendingCount: res.PendingCount,
				MemberCount:  res.MemberCount,
				Request:      requester,
				Action:       string(action),
				PerformedBy:  actor.Ref(),
			},
		})
		if action == app.ActionApprove {
			view := o.FormatRoom(ctx, saved, target)
			o.Dispatcher.EmitToUser(target, core.Event{
				Type: core.EventMembershipApproved,
				Data: core.MembershipDecisionPayload{RoomID: saved.ID, RoomName: saved.Name, Room: &view},
			})
			o.userEvent(saved.ID, "%s has been granted access to %s", requester.Username, saved.Name)
		} else {
			o.Dispatcher.EmitToUser(target, core.Event{
				Type: core.EventMembershipDenied,
				Data: core.MembershipDecisionPayload{RoomID: saved.ID, RoomName: saved.Name},
			})
		}
		return nil
	})
	if err != nil {
		return ResolveResult{}, err
	}
	log.Info().Str("module", "orch").Str("room", string(roomID)).Str("target", string(target)).Str("action", string(action)).Msg("request resolved")
	return res, nil
}

// UpdateMember applies a moderation action. Removed or banned users stop
// receiving room events on every connection.
func (o *Orchestrator) UpdateMember(ctx context.Context, conn core.ConnID, roomID domain.RoomID, target domain.UserID, action app.Action) (MembersResult, error) {
	actor, err := o.sessionUser(conn)
	if err != nil {
		return MembersResult{}, err
	}
	var res MembersResult
	err = o.inRoom(ctx, roomID, func(ctx context.Context, _ *core.RoomState, room *domain.Room) error {
		if err := o.knownTarget(ctx, room, actor.ID, target); err != nil {
			return err
		}
		tr, err := app.Update(room, actor.ID, target, action)
		if err != nil {
			return err
		}
		saved, err := o.commit(ctx, tr)
		if err != nil {
			return err
		}

		o.Dispatcher.Broadcast(saved.ID, core.Event{
			Type: core.EventMemberAction,
			Data: core.MemberActionPayload{
				RoomID:         saved.ID,
				Action:         string(action),
				User:           o.userRef(ctx, target),
				Actor:          actor.Ref(),
				MemberCount:    saved.MemberCount(),
				ModeratorCount: len(saved.Moderators),
				BannedCount:    len(saved.Banned),
				Role:           tr.After,
			},
		})
		o.Dispatcher.EmitToUser(target, core.Event{
			Type: core.EventMembershipUpdate,
			Data: core.MembershipUpdatePayload{
				RoomID:   saved.ID,
				RoomName: saved.Name,
				Action:   string(action),
				Role:     tr.After,
				Banned:   tr.After == domain.RoleBanned,
			},
		})
		if action == app.ActionRemove || action == app.ActionBan {
			o.Registry.UnsubscribeUser(saved.ID, target)
		}

		res = o.members(ctx, saved, actor.ID)
		res.Status = StatusSuccess
		res.Message = updateMessages[action]
		return nil
	})
	if err != nil {
		return MembersResult{}, err
	}
	log.Info().Str("module", "orch").Str("room", string(roomID)).Str("actor", string(actor.ID)).Str("target", string(target)).Str("action", string(action)).Msg("member updated")
	return res, nil
}

// InviteUser grants membership by username in approval and invite-only rooms.
func (o *Orchestrator) InviteUser(ctx context.Context, conn core.ConnID, roomID domain.RoomID, username string) (InviteResult, error) {
	actor, err := o.sessionUser(conn)
	if err != nil {
		return InviteResult{}, err
	}
	if username == "" {
		return InviteResult{}, domain.Validation("Target username is required")
	}
	target, err := o.Users.LookupUsername(ctx, username)
	if err != nil {
		return InviteResult{}, err
	}
	var res InviteResult
	err = o.inRoom(ctx, roomID, func(ctx context.Context, _ *core.RoomState, room *domain.Room) error {
		tr, err := app.Invite(room, actor.ID, target.ID)
		if err != nil {
			return err
		}
		saved, err := o.commit(ctx, tr)
		if err != nil {
			return err
		}
		view := o.FormatRoom(ctx, saved, actor.ID)
		res = InviteResult{Status: StatusSuccess, Room: &view}
		if !tr.Changed {
			res.Message = "User is already a member of this room"
			return nil
		}
		res.Message = "User invited successfully"

		if tr.Before == domain.RolePending {
			o.Dispatcher.EmitToUsers(saved.Managers(), core.Event{
				Type: core.EventRequestResolved,
				Data: core.RequestResolvedPayload{
					RoomID:       saved.ID,
					RoomName:     saved.Name,
					PendingCount: len(saved.PendingRequests),
					MemberCount:  saved.MemberCount(),
					Request:      target.Ref(),
					Action:       string(app.ActionInvite),
					PerformedBy:  actor.Ref(),
				},
			})
		}
		targetView := o.FormatRoom(ctx, saved, target.ID)
		o.Dispatcher.EmitToUser(target.ID, core.Event{
			Type: core.EventMembershipApproved,
			Data: core.MembershipDecisionPayload{RoomID: saved.ID, RoomName: saved.Name, Room: &targetView},
		})
		o.userEvent(saved.ID, "%s has been invited to %s", target.Username, saved.Name)
		return nil
	})
	if err != nil {
		return InviteResult{}, err
	}
	return res, nil
}

// knownTarget rejects targets that hold no role in room and were never seen
// by the directory. Non-managers fall through to the permission guards.
func (o *Orchestrator) knownTarget(ctx context.Context, room *domain.Room, actor, target domain.UserID) error {
	if app.RoleOf(room, target) != domain.RoleGuest || !app.CanManageMembers(app.RoleOf(room, actor)) {
		return nil
	}
	if _, err := o.Users.LookupUser(ctx, target); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return domain.NotFound("Target user not found")
		}
		return err
	}
	return nil
}
