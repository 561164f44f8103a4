package http

import (
	"net/http"
	"strings"

	"github.com/dkeye/Chat/internal/adapters/signal"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionTokenKey = "token"

// tokenFrom looks at the Authorization header, then the token query
// parameter (browsers cannot set headers on a WebSocket handshake), then the
// cookie session.
func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if q := c.Query("token"); q != "" {
		return q
	}
	if v, ok := sessions.Default(c).Get(sessionTokenKey).(string); ok {
		return v
	}
	return ""
}

func AuthMiddleware(verifier core.IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := verifier.VerifyIdentity(c.Request.Context(), tokenFrom(c))
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}
		c.Set(signal.UserKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.User {
	user, _ := c.MustGet(signal.UserKey).(domain.User)
	return user
}

type sessionRequest struct {
	Token string `json:"token" binding:"required"`
}

// createSession stores a verified token in the cookie session.
func createSession(verifier core.IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body sessionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			writeError(c, domain.Validation("Token is required"))
			return
		}
		user, err := verifier.VerifyIdentity(c.Request.Context(), body.Token)
		if err != nil {
			writeError(c, err)
			return
		}
		s := sessions.Default(c)
		s.Set(sessionTokenKey, body.Token)
		if err := s.Save(); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

func deleteSession(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := s.Save(); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
