package domain

// Role is the derived status of a user relative to one room.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleModerator Role = "moderator"
	RoleMember    Role = "member"
	RolePending   Role = "pending"
	RoleBanned    Role = "banned"
	RoleGuest     Role = "guest"
)

// Member is a user's participation view for a room, as rendered to clients.
type Member struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Online   bool   `json:"online"`
}

// Permissions are the manager capabilities derived from a role.
type Permissions struct {
	CanManage   bool `json:"canManage"`
	CanPromote  bool `json:"canPromote"`
	CurrentRole Role `json:"currentRole"`
}
