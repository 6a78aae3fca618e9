package broadcast

import (
	"context"

	"go.uber.org/zap"

	"attendify/internal/events"
)

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdJoin struct {
	session *Session
}

func (cmdJoin) hubCmd() {}

type cmdLeave struct {
	session *Session
}

func (cmdLeave) hubCmd() {}

type cmdPublish struct {
	data []byte
}

func (cmdPublish) hubCmd() {}

type cmdCount struct {
	replyCh chan int
}

func (cmdCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// --- Hub ---

// Hub is the in-process Bus: a single actor goroutine owns the member
// set, so joins, leaves and fan-out never race. Suitable on its own for
// single-process deployments; the redis and kafka buses layer
// cross-process distribution on top of it.
type Hub struct {
	cmdCh    chan hubCmd
	sessions map[*Session]struct{}
	logger   *zap.Logger
}

func NewHub(logger ...*zap.Logger) *Hub {
	l := zap.L().Named("broadcast.hub")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("broadcast.hub")
	}
	h := &Hub{
		cmdCh:    make(chan hubCmd, 256),
		sessions: make(map[*Session]struct{}),
		logger:   l,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdJoin:
			h.handleJoin(c.session)
		case cmdLeave:
			h.handleLeave(c.session)
		case cmdPublish:
			h.handlePublish(c.data)
		case cmdCount:
			c.replyCh <- len(h.sessions)
		case cmdStop:
			h.handleStop()
			return
		}
	}
}

func (h *Hub) handleJoin(s *Session) {
	h.sessions[s] = struct{}{}
	h.logger.Debug("session joined",
		zap.String("session_id", s.id.String()),
		zap.Int("members", len(h.sessions)),
	)
}

func (h *Hub) handleLeave(s *Session) {
	if _, exists := h.sessions[s]; !exists {
		return
	}
	delete(h.sessions, s)
	s.stop()
	h.logger.Debug("session left",
		zap.String("session_id", s.id.String()),
		zap.Int("members", len(h.sessions)),
	)
}

func (h *Hub) handlePublish(data []byte) {
	var slow []*Session
	for s := range h.sessions {
		if !s.send(data) {
			slow = append(slow, s)
		}
	}

	// A full buffer means the transport is not draining. Dropping the
	// session keeps delivery to everyone else prompt; the client
	// reconnects and re-reads state over the REST surface.
	for _, s := range slow {
		h.logger.Warn("disconnecting slow session",
			zap.String("session_id", s.id.String()),
		)
		h.handleLeave(s)
	}
}

func (h *Hub) handleStop() {
	for s := range h.sessions {
		s.stop()
		delete(h.sessions, s)
	}
}

// --- Public API ---

func (h *Hub) Join(s *Session) {
	h.cmdCh <- cmdJoin{session: s}
}

func (h *Hub) Leave(s *Session) {
	h.cmdCh <- cmdLeave{session: s}
}

// Publish encodes the envelope once and hands it to the fan-out loop.
// It does not wait for delivery.
func (h *Hub) Publish(ctx context.Context, env events.Envelope) error {
	data, ok := env.Marshal()
	if !ok {
		return nil
	}
	h.publishRaw(data)
	return nil
}

// publishRaw distributes an already-encoded envelope. The distributed
// backends feed received payloads through here.
func (h *Hub) publishRaw(data []byte) {
	h.cmdCh <- cmdPublish{data: data}
}

// Count returns the current member count.
func (h *Hub) Count() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- cmdCount{replyCh: replyCh}
	return <-replyCh
}

func (h *Hub) Close() {
	h.cmdCh <- cmdStop{}
}
