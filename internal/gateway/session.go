package gateway

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/minigame-arena/internal/core"
	"github.com/vovakirdan/minigame-arena/internal/multiplayer"
)

// wsSession implements multiplayer.SessionHandle over a WebSocket.
type wsSession struct {
	id       multiplayer.SessionID
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	doneOnce sync.Once
	logger   *log.Logger
}

func newWSSession(id multiplayer.SessionID, conn *websocket.Conn, buffer int, logger *log.Logger) *wsSession {
	return &wsSession{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (s *wsSession) ID() multiplayer.SessionID {
	return s.id
}

// Send marshals evt into an envelope and queues it. Never blocks; when the
// queue is full the event is dropped.
func (s *wsSession) Send(evt core.Event) {
	frame, err := encode(evt)
	if err != nil {
		s.logger.Error("cannot encode event", "session", s.id, "event", evt.EventName(), "error", err)
		return
	}

	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.send <- frame:
	default:
		s.logger.Warn("send queue full, dropping event", "session", s.id, "event", evt.EventName())
	}
}

func (s *wsSession) Done() <-chan struct{} {
	return s.done
}

// Close stops the write pump. Safe to call multiple times.
func (s *wsSession) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

func (s *wsSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case frame := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.logger.Debug("write failed", "session", s.id, "error", err)
				s.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func encode(evt core.Event) ([]byte, error) {
	return json.Marshal(outbound{Event: evt.EventName(), Data: evt})
}

var _ multiplayer.SessionHandle = (*wsSession)(nil)
