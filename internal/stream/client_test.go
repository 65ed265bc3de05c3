package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsServer is a controllable WebSocket endpoint for tests.
type wsServer struct {
	t      *testing.T
	srv    *httptest.Server
	mu     sync.Mutex
	conns  []*websocket.Conn
	dials  int32
	onConn func(*websocket.Conn)
}

func newWSServer(t *testing.T) *wsServer {
	t.Helper()
	ws := &wsServer{t: t}
	ws.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&ws.dials, 1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ws.mu.Lock()
		ws.conns = append(ws.conns, conn)
		onConn := ws.onConn
		ws.mu.Unlock()
		if onConn != nil {
			onConn(conn)
		}
	}))
	t.Cleanup(ws.srv.Close)
	return ws
}

func (ws *wsServer) url() string {
	return "ws" + strings.TrimPrefix(ws.srv.URL, "http")
}

func (ws *wsServer) dialCount() int {
	return int(atomic.LoadInt32(&ws.dials))
}

func (ws *wsServer) send(t *testing.T, event string, data any) {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	frame, err := json.Marshal(map[string]json.RawMessage{
		"event": json.RawMessage(`"` + event + `"`),
		"data":  payload,
	})
	require.NoError(t, err)

	ws.mu.Lock()
	defer ws.mu.Unlock()
	require.NotEmpty(t, ws.conns)
	conn := ws.conns[len(ws.conns)-1]
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func fastOptions() Options {
	return Options{
		MaxReconnectAttempts: 3,
		ReconnectDelay:       10 * time.Millisecond,
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

// --- tests ---

func TestConnectAndDispatch(t *testing.T) {
	ws := newWSServer(t)
	c := New(ws.url(), fastOptions())

	var mu sync.Mutex
	var got []string
	c.Subscribe(EventNewNotification, func(data json.RawMessage) {
		var payload struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(data, &payload))
		mu.Lock()
		got = append(got, payload.ID)
		mu.Unlock()
	})

	c.Connect()
	defer c.Close()
	waitFor(t, c.Connected)

	ws.send(t, EventNewNotification, map[string]string{"id": "n1"})
	ws.send(t, EventNewNotification, map[string]string{"id": "n2"})
	ws.send(t, "unrelated_event", map[string]string{"id": "ignored"})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 2
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"n1", "n2"}, got, "events arrive in send order")
}

func TestMultipleHandlersAndUnsubscribe(t *testing.T) {
	ws := newWSServer(t)
	c := New(ws.url(), fastOptions())

	var first, second atomic.Int32
	unsubFirst := c.Subscribe(EventPriceAlert, func(json.RawMessage) { first.Add(1) })
	c.Subscribe(EventPriceAlert, func(json.RawMessage) { second.Add(1) })

	c.Connect()
	defer c.Close()
	waitFor(t, c.Connected)

	ws.send(t, EventPriceAlert, map[string]string{})
	waitFor(t, func() bool { return second.Load() == 1 })
	assert.Equal(t, int32(1), first.Load())

	unsubFirst()

	ws.send(t, EventPriceAlert, map[string]string{})
	waitFor(t, func() bool { return second.Load() == 2 })
	assert.Equal(t, int32(1), first.Load(), "unsubscribed handler no longer fires")
}

func TestMalformedFramesAreSkipped(t *testing.T) {
	ws := newWSServer(t)
	c := New(ws.url(), fastOptions())

	var count atomic.Int32
	c.Subscribe(EventNewNotification, func(json.RawMessage) { count.Add(1) })

	c.Connect()
	defer c.Close()
	waitFor(t, c.Connected)

	ws.mu.Lock()
	conn := ws.conns[len(ws.conns)-1]
	ws.mu.Unlock()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	ws.send(t, EventNewNotification, map[string]string{"id": "after"})
	waitFor(t, func() bool { return count.Load() == 1 })
	assert.True(t, c.Connected(), "a malformed frame does not drop the connection")
}

func TestStatusListenerSeesTransitions(t *testing.T) {
	ws := newWSServer(t)
	c := New(ws.url(), Options{MaxReconnectAttempts: 1, ReconnectDelay: 10 * time.Millisecond})

	var mu sync.Mutex
	var statuses []Status
	c.OnStatusChange(func(s Status) {
		mu.Lock()
		statuses = append(statuses, s)
		mu.Unlock()
	})

	c.Connect()
	waitFor(t, c.Connected)
	c.Close()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, statuses)
	assert.Equal(t, StatusConnected, statuses[0])
	assert.Equal(t, StatusDisconnected, statuses[len(statuses)-1])
}

func TestReconnectBudgetIsBounded(t *testing.T) {
	ws := newWSServer(t)
	// Drop every connection immediately after the handshake.
	ws.onConn = func(conn *websocket.Conn) {
		conn.Close()
	}

	c := New(ws.url(), fastOptions())
	c.Connect()

	// 1 initial dial plus 3 budgeted reconnect attempts.
	waitFor(t, func() bool { return ws.dialCount() >= 4 })
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 4, ws.dialCount(), "reconnects stop once the budget is spent")
	assert.False(t, c.Connected())
}

func TestConnectGrantsFreshBudget(t *testing.T) {
	ws := newWSServer(t)
	ws.onConn = func(conn *websocket.Conn) {
		conn.Close()
	}

	c := New(ws.url(), Options{MaxReconnectAttempts: 1, ReconnectDelay: 5 * time.Millisecond})
	c.Connect()
	waitFor(t, func() bool { return ws.dialCount() >= 2 })
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 2, ws.dialCount())

	// An explicit reconnect request starts a new budget.
	c.Connect()
	waitFor(t, func() bool { return ws.dialCount() >= 4 })
	c.Close()
}

func TestCloseStopsReconnection(t *testing.T) {
	ws := newWSServer(t)
	c := New(ws.url(), Options{MaxReconnectAttempts: 100, ReconnectDelay: 10 * time.Millisecond})

	c.Connect()
	waitFor(t, c.Connected)
	c.Close()

	dialsAtClose := ws.dialCount()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, dialsAtClose, ws.dialCount(), "no dials after Close")
}

func TestConnectIsIdempotentWhileRunning(t *testing.T) {
	ws := newWSServer(t)
	c := New(ws.url(), fastOptions())

	c.Connect()
	waitFor(t, c.Connected)
	c.Connect()
	c.Connect()
	defer c.Close()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, ws.dialCount(), "redundant Connect calls do not redial")
}
