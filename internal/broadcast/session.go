package broadcast

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	writeDeadline  = 5 * time.Second
	pingInterval   = 30 * time.Second
	pongDeadline   = 60 * time.Second
	sendBufferSize = 16
)

// wsConn is the slice of *websocket.Conn the session needs. Tests
// substitute stub transports to exercise slow-subscriber handling.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Session is one live subscriber connection. It owns the single writer
// goroutine for its transport; envelopes are handed over through a
// bounded channel so one stalled transport never holds up the hub.
type Session struct {
	id       uuid.UUID
	conn     wsConn
	clock    clockwork.Clock
	sendCh   chan []byte
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSession(conn wsConn, clock clockwork.Clock) *Session {
	s := &Session{
		id:     uuid.New(),
		conn:   conn,
		clock:  clock,
		sendCh: make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(s.clock.Now().Add(pongDeadline))
	})
	s.wg.Add(1)
	go s.writeLoop()
	return s
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) writeLoop() {
	ticker := s.clock.NewTicker(pingInterval)
	defer ticker.Stop()
	defer s.wg.Done()

	for {
		select {
		case msg, ok := <-s.sendCh:
			if !ok {
				return
			}
			s.conn.SetWriteDeadline(s.clock.Now().Add(writeDeadline))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.Chan():
			s.conn.SetWriteDeadline(s.clock.Now().Add(writeDeadline))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// send hands one encoded envelope to the session without blocking.
// Reports false when the session's buffer is full.
func (s *Session) send(data []byte) bool {
	select {
	case s.sendCh <- data:
		return true
	default:
		return false
	}
}

func (s *Session) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}
