package app

import (
	"errors"
	"testing"
	"time"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/stretchr/testify/require"
)

func newRoom(t *testing.T, v domain.Visibility) *domain.Room {
	t.Helper()
	room, err := domain.NewRoom("room-1", "general", "", v, "owner", time.Unix(0, 0))
	require.NoError(t, err)
	return room
}

func TestRoleOf_Precedence(t *testing.T) {
	req := require.New(t)
	room := newRoom(t, domain.VisibilityApproval)
	room.Members = []domain.UserID{"m"}
	room.Moderators = []domain.UserID{"mod"}
	room.PendingRequests = []domain.UserID{"p"}
	room.Banned = []domain.UserID{"b"}

	req.Equal(domain.RoleOwner, RoleOf(room, "owner"))
	req.Equal(domain.RoleModerator, RoleOf(room, "mod"))
	req.Equal(domain.RoleMember, RoleOf(room, "m"))
	req.Equal(domain.RolePending, RoleOf(room, "p"))
	req.Equal(domain.RoleBanned, RoleOf(room, "b"))
	req.Equal(domain.RoleGuest, RoleOf(room, "stranger"))
	req.Equal(domain.RoleGuest, RoleOf(nil, "owner"))

	// When the disjointness invariant is broken, banned still wins
	room.Members = append(room.Members, "b")
	req.Equal(domain.RoleBanned, RoleOf(room, "b"))
}

func TestCanActOnTarget(t *testing.T) {
	cases := []struct {
		actor, target domain.Role
		want          bool
	}{
		{domain.RoleOwner, domain.RoleOwner, false},
		{domain.RoleModerator, domain.RoleOwner, false},
		{domain.RoleOwner, domain.RoleModerator, true},
		{domain.RoleModerator, domain.RoleModerator, false},
		{domain.RoleModerator, domain.RoleMember, true},
		{domain.RoleModerator, domain.RolePending, false},
		{domain.RoleModerator, domain.RoleGuest, false},
		{domain.RoleOwner, domain.RolePending, true},
		{domain.RoleOwner, domain.RoleGuest, true},
		{domain.RoleMember, domain.RoleMember, false},
		{domain.RoleGuest, domain.RoleGuest, false},
	}
	for _, c := range cases {
		t.Run(string(c.actor)+"_on_"+string(c.target), func(t *testing.T) {
			require.Equal(t, c.want, CanActOnTarget(c.actor, c.target))
		})
	}
}

func TestCanSendMessage(t *testing.T) {
	req := require.New(t)
	open := newRoom(t, domain.VisibilityOpen)
	closed := newRoom(t, domain.VisibilityInviteOnly)

	req.True(CanSendMessage(open, domain.RoleGuest))
	req.False(CanSendMessage(open, domain.RoleBanned))
	req.False(CanSendMessage(closed, domain.RoleGuest))
	req.False(CanSendMessage(closed, domain.RolePending))
	req.True(CanSendMessage(closed, domain.RoleMember))
	req.True(CanSendMessage(closed, domain.RoleOwner))
}

func TestCanJoin(t *testing.T) {
	req := require.New(t)
	req.Equal(JoinAsMember, CanJoin(newRoom(t, domain.VisibilityOpen), domain.RoleGuest))
	req.Equal(JoinAsPending, CanJoin(newRoom(t, domain.VisibilityApproval), domain.RoleGuest))
	req.Equal(JoinDenied, CanJoin(newRoom(t, domain.VisibilityInviteOnly), domain.RoleGuest))
	req.Equal(JoinDenied, CanJoin(newRoom(t, domain.VisibilityOpen), domain.RoleBanned))
	req.Equal(AlreadyJoined, CanJoin(newRoom(t, domain.VisibilityInviteOnly), domain.RoleModerator))
}

func TestPermissionsOf(t *testing.T) {
	req := require.New(t)
	req.Equal(domain.Permissions{CanManage: true, CanPromote: true, CurrentRole: domain.RoleOwner}, PermissionsOf(domain.RoleOwner))
	req.Equal(domain.Permissions{CanManage: true, CurrentRole: domain.RoleModerator}, PermissionsOf(domain.RoleModerator))
	req.Equal(domain.Permissions{CurrentRole: domain.RoleMember}, PermissionsOf(domain.RoleMember))
}

func TestBackpressurePolicies(t *testing.T) {
	req := require.New(t)
	req.Equal(DropFrame, SimplePolicy{}.OnBackPressure("c", core.ErrBackpressure))
	req.Equal(KickMember, SimplePolicy{}.OnBackPressure("c", core.ErrConnectionClosed))
	req.Equal(KickMember, SimplePolicy{}.OnBackPressure("c", errors.Join(errors.New("write"), core.ErrConnectionClosed)))
	req.Equal(KickMember, StrictPolicy{}.OnBackPressure("c", core.ErrBackpressure))
}
