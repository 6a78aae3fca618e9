package broadcast

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"attendify/internal/events"
)

// stubConn is an in-memory transport. With blockCh set, WriteMessage
// parks until the channel is closed, simulating a stalled client.
type stubConn struct {
	mu       sync.Mutex
	messages [][]byte
	pings    int
	closed   bool
	blockCh  chan struct{}
}

func (c *stubConn) WriteMessage(messageType int, data []byte) error {
	if c.blockCh != nil {
		<-c.blockCh
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if messageType == websocket.PingMessage {
		c.pings++
		return nil
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *stubConn) SetWriteDeadline(time.Time) error     { return nil }
func (c *stubConn) SetReadDeadline(time.Time) error      { return nil }
func (c *stubConn) SetPongHandler(func(string) error)    {}
func (c *stubConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *stubConn) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *stubConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func testEnvelope(id string) events.Envelope {
	return events.New(events.KindClient, events.OpUpdate, id, map[string]any{"id": id})
}

func TestHubDeliversToJoinedSessions(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	connA := &stubConn{}
	connB := &stubConn{}
	a := NewSession(connA, clockwork.NewFakeClock())
	b := NewSession(connB, clockwork.NewFakeClock())
	hub.Join(a)
	hub.Join(b)

	require.NoError(t, hub.Publish(context.Background(), testEnvelope("c1")))

	for _, conn := range []*stubConn{connA, connB} {
		require.Eventually(t, func() bool {
			return len(conn.received()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.JSONEq(t, `{"event":"client_update","data":{"id":"c1"}}`, string(conn.received()[0]))
	}
}

func TestHubLateJoinerMissesEarlierEvents(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	require.NoError(t, hub.Publish(context.Background(), testEnvelope("before")))

	conn := &stubConn{}
	s := NewSession(conn, clockwork.NewFakeClock())
	hub.Join(s)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), testEnvelope("after")))

	require.Eventually(t, func() bool {
		return len(conn.received()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, string(conn.received()[0]), "after")
}

func TestHubPreservesPublishOrder(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	conn := &stubConn{}
	hub.Join(NewSession(conn, clockwork.NewFakeClock()))

	ids := []string{"c1", "c2", "c3", "c4", "c5"}
	for _, id := range ids {
		require.NoError(t, hub.Publish(context.Background(), testEnvelope(id)))
	}

	require.Eventually(t, func() bool {
		return len(conn.received()) == len(ids)
	}, time.Second, 5*time.Millisecond)

	for i, msg := range conn.received() {
		assert.Contains(t, string(msg), ids[i])
	}
}

func TestHubDropsSlowSessionAndKeepsOthers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	release := make(chan struct{})
	slowConn := &stubConn{blockCh: release}
	fastConn := &stubConn{}
	slow := NewSession(slowConn, clockwork.NewFakeClock())
	fast := NewSession(fastConn, clockwork.NewFakeClock())
	hub.Join(slow)
	hub.Join(fast)
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 5*time.Millisecond)

	// One message parks in the slow writer, sendBufferSize queue up
	// behind it, and the next send overflows.
	total := sendBufferSize + 2
	for i := 0; i < total; i++ {
		require.NoError(t, hub.Publish(context.Background(), testEnvelope("c1")))
	}

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(fastConn.received()) == total
	}, time.Second, 5*time.Millisecond)
	assert.True(t, slowConn.isClosed())

	close(release)

	// The survivor still gets fresh events.
	require.NoError(t, hub.Publish(context.Background(), testEnvelope("c2")))
	require.Eventually(t, func() bool {
		return len(fastConn.received()) == total+1
	}, time.Second, 5*time.Millisecond)
}

func TestHubLeaveStopsSession(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	conn := &stubConn{}
	s := NewSession(conn, clockwork.NewFakeClock())
	hub.Join(s)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	hub.Leave(s)

	require.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return conn.isClosed() }, time.Second, 5*time.Millisecond)
}

func TestHubCloseStopsAllSessions(t *testing.T) {
	hub := NewHub(zap.NewNop())

	connA := &stubConn{}
	connB := &stubConn{}
	hub.Join(NewSession(connA, clockwork.NewFakeClock()))
	hub.Join(NewSession(connB, clockwork.NewFakeClock()))

	hub.Close()

	require.Eventually(t, func() bool {
		return connA.isClosed() && connB.isClosed()
	}, time.Second, 5*time.Millisecond)
}

func TestSessionPingsOnSchedule(t *testing.T) {
	clock := clockwork.NewFakeClock()
	conn := &stubConn{}
	s := NewSession(conn, clock)
	defer s.stop()

	clock.BlockUntil(1) // writer waiting on the ticker
	clock.Advance(pingInterval)

	require.Eventually(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return conn.pings == 1
	}, time.Second, 5*time.Millisecond)
}
