// Package auth verifies the bearer tokens presented by clients.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var ErrEmptySecret = errors.New("auth: signing secret is empty")

// CustomClaims is the payload signed into every token.
type CustomClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Verifier implements core.IdentityVerifier with HS256 tokens.
type Verifier struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewVerifier(secret, issuer string, ttl time.Duration) (*Verifier, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Verifier{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// IssueToken signs a token for the user. The server only verifies tokens;
// issuing is used by the dev token command and tests.
func (v *Verifier) IssueToken(user domain.User) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID:   string(user.ID),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    v.issuer,
			Subject:   string(user.ID),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *Verifier) VerifyIdentity(_ context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return domain.User{}, domain.Authentication("Authentication token is required")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &CustomClaims{}, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.User{}, domain.Authentication("Authentication token expired")
		}
		return domain.User{}, domain.Authentication("Invalid authentication token")
	}
	claims, ok := parsed.Claims.(*CustomClaims)
	if !ok || !parsed.Valid {
		return domain.User{}, domain.Authentication("Invalid authentication token")
	}
	user, err := domain.NewUser(domain.UserID(claims.UserID), claims.Username)
	if err != nil {
		return domain.User{}, domain.Authentication("Invalid authentication token")
	}
	return *user, nil
}
