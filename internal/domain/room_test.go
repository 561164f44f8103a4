package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRoom_Validation(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name       string
		roomName   string
		visibility Visibility
		owner      UserID
		wantErr    bool
	}{
		{"Valid open room", "general", VisibilityOpen, "alice", false},
		{"Name trimmed before length check", "  ab  ", VisibilityOpen, "alice", true},
		{"Name too long", strings.Repeat("x", MaxRoomNameLen+1), VisibilityOpen, "alice", true},
		{"Unknown visibility", "general", Visibility("secret"), "alice", true},
		{"Missing owner", "general", VisibilityApproval, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			room, err := NewRoom("r1", tt.roomName, "", tt.visibility, tt.owner, now)
			if tt.wantErr {
				req.Error(err)
				req.Equal(KindValidation, KindOf(err))
				return
			}
			req.NoError(err)
			req.Equal(tt.owner, room.OwnerID)
			req.Empty(room.Members)
			req.Equal(1, room.MemberCount())
		})
	}
}

func TestParseVisibility_Aliases(t *testing.T) {
	req := require.New(t)
	for in, want := range map[string]Visibility{
		"public":      VisibilityOpen,
		"request":     VisibilityApproval,
		"private":     VisibilityInviteOnly,
		"invite-only": VisibilityInviteOnly,
		"":            VisibilityOpen,
	} {
		got, err := ParseVisibility(in)
		req.NoError(err)
		req.Equal(want, got, in)
	}
	_, err := ParseVisibility("hidden")
	req.Equal(KindValidation, KindOf(err))
}

func TestRoom_PlaceKeepsSetsDisjoint(t *testing.T) {
	req := require.New(t)
	room := &Room{OwnerID: "owner"}

	// Given bob is pending
	room.Place("bob", &room.PendingRequests)

	// When bob is moved to members then banned
	room.Place("bob", &room.Members)
	req.True(room.IsMember("bob"))
	req.False(room.IsPending("bob"))

	room.Place("bob", &room.Banned)

	// Then bob only lives in the banned set
	req.True(room.IsBanned("bob"))
	req.False(room.IsMember("bob"))
	req.Empty(room.Members)
	req.Empty(room.PendingRequests)
}

func TestRoom_CloneIsDeep(t *testing.T) {
	req := require.New(t)
	room := &Room{OwnerID: "owner", Members: []UserID{"bob"}}

	clone := room.Clone()
	clone.Place("carol", &clone.Members)
	clone.Place("bob", &clone.Banned)

	req.Equal([]UserID{"bob"}, room.Members)
	req.Empty(room.Banned)
}

func TestNormalizeText(t *testing.T) {
	req := require.New(t)

	text, err := NormalizeText("  hello  ", 0)
	req.NoError(err)
	req.Equal("hello", text)

	_, err = NormalizeText("   ", 10)
	req.Equal(KindValidation, KindOf(err))

	// runes, not bytes
	_, err = NormalizeText(strings.Repeat("é", 5), 5)
	req.NoError(err)
	_, err = NormalizeText(strings.Repeat("é", 6), 5)
	req.Equal(KindValidation, KindOf(err))
}

func TestNewUser(t *testing.T) {
	req := require.New(t)
	u, err := NewUser("id-1", " alice ")
	req.NoError(err)
	req.Equal("alice", u.Username)

	_, err = NewUser("id-1", "")
	req.ErrorIs(err, ErrUsernameEmpty)
	_, err = NewUser("id-1", strings.Repeat("a", MaxUsernameLen+1))
	req.ErrorIs(err, ErrUsernameTooLong)
}
