// Package signal is the WebSocket transport: one read pump and one write
// pump per connection, JSON request frames answered with ack frames.
package signal

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/Chat/internal/app/orch"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	defaultSendBuffer = 32
	defaultReadLimit  = 32768
	defaultPingPeriod = 54 * time.Second
	writeWait         = 5 * time.Second
)

// UserKey is where the HTTP layer stores the authenticated domain.User.
const UserKey = "user"

type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	SendBuffer int
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	Limiter  *RoomRateLimiter
	opts     Options
	validate *validator.Validate
}

func NewSignalWSController(o *orch.Orchestrator, limiter *RoomRateLimiter, opts Options) *SignalWSController {
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = defaultReadLimit
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = defaultPingPeriod
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &SignalWSController{
		Orch:     o,
		Limiter:  limiter,
		opts:     opts,
		validate: validate,
	}
}

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// WsSignalConn implements core.SignalConnection over a WebSocket.
type WsSignalConn struct {
	id   core.ConnID
	conn WSConn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func NewWsSignalConn(id core.ConnID, conn WSConn, buffer int) *WsSignalConn {
	return &WsSignalConn{id: id, conn: conn, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades an authenticated request and starts its pumps.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	user, ok := c.MustGet(UserKey).(domain.User)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ctl.Serve(ctx, ws, user)
}

// Serve binds ws to user and runs the connection until either side closes.
func (ctl *SignalWSController) Serve(ctx context.Context, ws WSConn, user domain.User) core.ConnID {
	id := core.ConnID(uuid.NewString())
	conn := NewWsSignalConn(id, ws, ctl.opts.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)

	ctl.Orch.Connect(ctx, core.Session{ID: id, User: user, Signal: conn}, cancel)
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("user", string(user.ID)).Msg("new WS connection")

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, conn)
	return id
}
