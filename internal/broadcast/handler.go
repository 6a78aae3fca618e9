package broadcast

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Handler struct {
	bus    Bus
	clock  clockwork.Clock
	logger *zap.Logger
}

func NewHandler(bus Bus, clock clockwork.Clock, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("broadcast.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("broadcast.handler")
	}
	return &Handler{bus: bus, clock: clock, logger: l}
}

// Serve upgrades the connection, joins the broadcast group and blocks in
// the read loop until the client goes away. Inbound frames carry no
// meaning on this channel; they are read (keeping pong handling alive)
// and ignored.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	session := NewSession(conn, h.clock)
	h.bus.Join(session)
	defer h.bus.Leave(session)

	conn.SetReadDeadline(h.clock.Now().Add(pongDeadline))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.logger.Debug("session read loop ended",
				zap.String("session_id", session.ID().String()),
				zap.Error(err),
			)
			return
		}
		conn.SetReadDeadline(h.clock.Now().Add(pongDeadline))
	}
}

func RegisterRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/ws", handler.Serve)
}
