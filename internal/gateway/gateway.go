// Package gateway is the WebSocket transport between browsers and the
// match coordinator. Every frame is a JSON envelope {"event", "data"}.
package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/vovakirdan/minigame-arena/internal/core"
	"github.com/vovakirdan/minigame-arena/internal/multiplayer"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Inbound frames are tiny; anything bigger is abuse
	maxMessageSize = 4096
)

// Inbound event names.
const (
	EventJoinQueue   = "join-queue"
	EventLeaveQueue  = "leave-queue"
	EventGameAction  = "game-action"
	EventPlayerReady = "player-ready"
	EventRageQuit    = "rage-quit"
)

var errUnknownEvent = errors.New("gateway: unknown event")

// Envelope is the wire frame in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Sender accepts coordinator messages. *multiplayer.Coordinator implements it.
type Sender interface {
	Send(msg multiplayer.CoordinatorMessage)
}

// Config holds gateway settings.
type Config struct {
	// AllowedOrigins restricts the Origin header. Empty or "*" allows any.
	AllowedOrigins []string

	// SendBuffer is the per-connection outbound queue length.
	SendBuffer int
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithClock sets the clock used to stamp inbound actions.
func WithClock(clock clockwork.Clock) Option {
	return func(g *Gateway) {
		g.clock = clock
	}
}

// Gateway upgrades HTTP requests and pumps frames for each connection.
type Gateway struct {
	coord    Sender
	sessions *multiplayer.SessionRegistry
	config   Config
	upgrader websocket.Upgrader
	logger   *log.Logger
	clock    clockwork.Clock
	wg       sync.WaitGroup
}

// New creates a gateway that forwards to coord and registers sessions.
func New(coord Sender, sessions *multiplayer.SessionRegistry, cfg Config, opts ...Option) *Gateway {
	if cfg.SendBuffer < 1 {
		cfg.SendBuffer = 256
	}
	g := &Gateway{
		coord:    coord,
		sessions: sessions,
		config:   cfg,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "gateway",
		})
	}
	if g.clock == nil {
		g.clock = clockwork.NewRealClock()
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	allowed := g.config.AllowedOrigins
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(allowed, origin)
}

// ServeHTTP upgrades the connection and blocks until it closes.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	s := newWSSession(multiplayer.SessionID(uuid.NewString()), conn, g.config.SendBuffer, g.logger)
	g.sessions.Register(s)
	g.logger.Info("player connected", "session", s.id, "remote", r.RemoteAddr)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		s.writePump()
	}()

	g.readPump(s)

	g.sessions.Unregister(s.id)
	g.coord.Send(multiplayer.SessionDisconnectedMsg{SessionID: s.id})
	s.Close()
	g.logger.Info("player disconnected", "session", s.id)
}

// Wait blocks until every write pump has exited.
func (g *Gateway) Wait() {
	g.wg.Wait()
}

func (g *Gateway) readPump(s *wsSession) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Debug("read failed", "session", s.id, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		g.handleFrame(s, data, g.clock.Now())
	}
}

// handleFrame decodes one inbound frame. Faults are reported to the sender
// and never close the connection.
func (g *Gateway) handleFrame(s *wsSession, data []byte, received time.Time) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("frame handling panicked", "session", s.id, "panic", r)
			s.Send(multiplayer.GameError{Message: "Your message could not be processed"})
		}
	}()

	msg, err := decode(s.id, data, received)
	if err != nil {
		g.logger.Debug("ignoring frame", "session", s.id, "error", err)
		return
	}
	g.coord.Send(msg)
}

type joinPayload struct {
	DisplayName string `json:"displayName"`
}

// decode turns a raw frame into a coordinator message.
func decode(id multiplayer.SessionID, data []byte, received time.Time) (multiplayer.CoordinatorMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("gateway: malformed envelope: %w", err)
	}

	switch env.Event {
	case EventJoinQueue:
		return multiplayer.JoinQueueMsg{SessionID: id, DisplayName: joinName(env.Data)}, nil
	case EventLeaveQueue:
		return multiplayer.LeaveQueueMsg{SessionID: id}, nil
	case EventPlayerReady:
		return multiplayer.PlayerReadyMsg{SessionID: id}, nil
	case EventRageQuit:
		return multiplayer.RageQuitMsg{SessionID: id}, nil
	case EventGameAction:
		action, err := core.ParseAction(env.Data)
		if err != nil {
			return nil, fmt.Errorf("gateway: bad game action: %w", err)
		}
		action.At = received
		return multiplayer.GameActionMsg{SessionID: id, Action: action}, nil
	}
	return nil, fmt.Errorf("%w %q", errUnknownEvent, env.Event)
}

// joinName accepts either {"displayName": "..."} or a bare JSON string.
func joinName(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err == nil {
		return p.DisplayName
	}
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return name
	}
	return ""
}
