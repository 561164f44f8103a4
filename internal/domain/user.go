// Package domain contains entities and their invariants, no transport or storage.
package domain

import (
	"strings"
)

const (
	MaxUserIDLen   = 36
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = Validation("username too long")
	ErrUsernameEmpty   = Validation("username empty")
)

type UserID string

// User is owned by the identity collaborator; the core only reads it.
type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

// NewUser validates the identity pair handed over by the verifier.
func NewUser(id UserID, username string) (*User, error) {
	username = strings.TrimSpace(username)
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	if id == "" || len(id) > MaxUserIDLen {
		return nil, Validation("invalid user id")
	}
	return &User{ID: id, Username: username}, nil
}

// UserRef is the compact user view carried by events.
type UserRef struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

func (u User) Ref() UserRef { return UserRef{ID: u.ID, Username: u.Username} }
