// Package signal is the websocket edge of the relay: it upgrades client
// connections, pumps frames in both directions and dispatches the JSON
// signaling protocol onto the orchestrator.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Parley/internal/app/orch"
	"github.com/dkeye/Parley/internal/config"
	"github.com/dkeye/Parley/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrBackpressure = errors.New("backpressure")

const (
	callRequestLimit  = 10
	callRequestWindow = 30 * time.Second
)

type SignalWSController struct {
	Orch     *orch.Orchestrator
	cfg      *config.Config
	limiter  *CallRateLimiter
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, cfg *config.Config) *SignalWSController {
	return &SignalWSController{
		Orch:    o,
		cfg:     cfg,
		limiter: NewCallRateLimiter(callRequestLimit, callRequestWindow),
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(cfg.Origins),
		},
	}
}

// originChecker allows the configured origins. An empty list allows
// everything, for development.
func originChecker(origins []string) func(r *http.Request) bool {
	if len(origins) == 0 {
		return func(*http.Request) bool { return true }
	}
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := allowed[r.Header.Get("Origin")]
		return ok
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
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

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	// One session id per websocket, not per browser: the client token
	// cookie outlives reconnects, a connection must not.
	sid := core.SessionID(uuid.NewString())
	log.Info().
		Str("module", "signal").
		Str("sid", string(sid)).
		Str("ct", c.GetString("client_token")).
		Msg("new WS connection")

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.Bind(sid, conn, cancel)
	ctl.Orch.Metrics.Connections.Set(float64(ctl.Orch.Registry.Count()))

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}

// disconnect is the single cleanup reaction for a dead connection. It runs
// once, from the read pump's exit path.
func (ctl *SignalWSController) disconnect(sid core.SessionID) {
	res := ctl.Orch.Disconnect(sid)
	if res.HadPeer {
		ctl.Orch.Registry.Publish(res.Peer, map[string]any{"type": "peer_disconnected"})
	}

	ctl.Orch.Registry.Cancel(sid)
	ctl.Orch.Registry.Unbind(sid)
	ctl.Orch.Metrics.Connections.Set(float64(ctl.Orch.Registry.Count()))
	ctl.limiter.Forget(sid)

	if res.Registered {
		ctl.broadcastOnline()
	}
}

func (ctl *SignalWSController) broadcastOnline() {
	ctl.Orch.Registry.Broadcast(struct {
		Type  string   `json:"type"`
		Users []string `json:"users"`
	}{
		Type:  "online_users",
		Users: ctl.Orch.Online(),
	})
}
