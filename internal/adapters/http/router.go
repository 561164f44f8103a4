package http

import (
	"context"

	"github.com/dkeye/Chat/internal/adapters/signal"
	"github.com/dkeye/Chat/internal/app/orch"
	"github.com/dkeye/Chat/internal/config"
	"github.com/dkeye/Chat/internal/core"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const sessionName = "ChatSessions"

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, verifier core.IdentityVerifier, ctrl *signal.SignalWSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: int(cfg.TokenTTL.Seconds()), HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")
	api.GET("/health", health(o))
	api.POST("/session", createSession(verifier))
	api.DELETE("/session", deleteSession)

	h := &roomHandlers{orch: o}
	authed := api.Group("", AuthMiddleware(verifier))
	authed.GET("/me", h.me)
	authed.GET("/rooms", h.list)
	authed.POST("/rooms", h.create)
	authed.GET("/rooms/joined", h.joined)
	authed.GET("/rooms/:id", h.get)
	authed.GET("/rooms/:id/members", h.members)
	authed.GET("/rooms/:id/messages", h.messages)
	authed.GET("/rooms/:id/requests", h.requests)

	authed.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("user", string(currentUser(c).ID)).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
