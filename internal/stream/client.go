package stream

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Status is the connectivity state reported to status listeners.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnected
)

func (s Status) String() string {
	if s == StatusConnected {
		return "connected"
	}
	return "disconnected"
}

// Event names pushed by the notification server.
const (
	EventNewNotification    = "new_notification"
	EventNotificationUpdate = "notification_update"
	EventPriceAlert         = "price_alert"
)

// Handler receives the raw JSON payload of a named event.
type Handler func(data json.RawMessage)

// frame is the wire format of every pushed message.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type handlerEntry struct {
	id int
	fn Handler
}

// Options tunes the reconnection policy. Zero values select the
// defaults (5 attempts, 1s apart).
type Options struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	HandshakeTimeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxReconnectAttempts == 0 {
		o.MaxReconnectAttempts = 5
	}
	if o.ReconnectDelay == 0 {
		o.ReconnectDelay = time.Second
	}
	if o.HandshakeTimeout == 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
	return o
}

// Client maintains a single long-lived WebSocket connection to the
// notification server and fans pushed events out to subscribers.
//
// After an unexpected drop it reconnects automatically, but only
// within the attempt budget granted by the last explicit Connect call.
// Once the budget is exhausted the client stays disconnected until
// Connect is called again. Connection errors are surfaced exclusively
// through status listeners.
type Client struct {
	url    string
	opts   Options
	dialer *websocket.Dialer

	mu              sync.Mutex
	conn            *websocket.Conn
	running         bool
	connected       bool
	gen             int
	nextHandlerID   int
	handlers        map[string][]handlerEntry
	statusListeners []func(Status)
}

// New creates a stream client for the given WebSocket URL. No
// connection is attempted until Connect is called.
func New(url string, opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{
		url:  url,
		opts: opts,
		dialer: &websocket.Dialer{
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		handlers: make(map[string][]handlerEntry),
	}
}

// Connect starts the connection loop. It is idempotent: calling it
// while already connected or connecting is a no-op.
func (c *Client) Connect() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	gen := c.gen
	c.mu.Unlock()

	go c.run(gen)
}

// Close tears the connection down and stops any reconnection in
// progress. A closed client can be resumed with Connect.
func (c *Client) Close() {
	c.mu.Lock()
	c.gen++
	c.running = false
	conn := c.conn
	c.conn = nil
	wasConnected := c.connected
	c.connected = false
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if wasConnected {
		c.notifyStatus(StatusDisconnected)
	}
}

// OnStatusChange registers a listener invoked on every connectivity
// transition, in registration order.
func (c *Client) OnStatusChange(listener func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusListeners = append(c.statusListeners, listener)
}

// Connected reports the current connectivity state.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Subscribe registers a handler for all future events with the given
// name and returns a function that removes it again. Multiple handlers
// per event are allowed; each occurrence invokes them in registration
// order.
func (c *Client) Subscribe(event string, h Handler) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextHandlerID
	c.nextHandlerID++
	c.handlers[event] = append(c.handlers[event], handlerEntry{id: id, fn: h})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		entries := c.handlers[event]
		for i, e := range entries {
			if e.id == id {
				c.handlers[event] = append(entries[:i:i], entries[i+1:]...)
				break
			}
		}
	}
}

// run owns the connection for one Connect call. gen identifies the
// call; Close bumps the generation to orphan this loop.
func (c *Client) run(gen int) {
	attemptsLeft := c.opts.MaxReconnectAttempts

	for {
		conn, _, err := c.dialer.Dial(c.url, nil)

		if c.stale(gen) {
			if conn != nil {
				conn.Close()
			}
			return
		}

		if err == nil {
			c.mu.Lock()
			c.conn = conn
			c.connected = true
			c.mu.Unlock()
			c.notifyStatus(StatusConnected)

			c.readLoop(conn)

			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			conn.Close()

			if c.stale(gen) {
				return
			}
			c.mu.Lock()
			c.connected = false
			c.mu.Unlock()
		} else {
			log.Printf("stream: dial %s: %v", c.url, err)
		}

		c.notifyStatus(StatusDisconnected)

		if attemptsLeft == 0 {
			// Budget exhausted: stay down until an explicit Connect.
			c.mu.Lock()
			if c.gen == gen {
				c.running = false
			}
			c.mu.Unlock()
			return
		}
		attemptsLeft--

		time.Sleep(c.opts.ReconnectDelay)
		if c.stale(gen) {
			return
		}
	}
}

// readLoop consumes frames until the connection drops.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var f frame
		if err := json.Unmarshal(message, &f); err != nil {
			log.Printf("stream: discarding malformed frame: %v", err)
			continue
		}
		if f.Event == "" {
			continue
		}

		c.dispatch(f)
	}
}

func (c *Client) dispatch(f frame) {
	c.mu.Lock()
	entries := append([]handlerEntry{}, c.handlers[f.Event]...)
	c.mu.Unlock()

	for _, e := range entries {
		e.fn(f.Data)
	}
}

func (c *Client) stale(gen int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen != gen
}

func (c *Client) notifyStatus(s Status) {
	c.mu.Lock()
	listeners := append([]func(Status){}, c.statusListeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(s)
	}
}
