package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/songclash/songclash/core"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Song uploads ride on this
	// connection, so the limit is generous.
	maxMessageSize = 8 << 20

	sendQueueSize = 256
)

// Envelope is the wire frame: an event name plus its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type handlerFunc func(ctx context.Context, data json.RawMessage)

// Conn is one client connection. It owns the per-connection state machine:
// the current status decides which events are dispatched, and the handler
// table is swapped atomically on every status change. All inbound dispatch
// happens on the single read pump, so handlers for one connection never run
// concurrently and always see messages in arrival order.
type Conn struct {
	ws  *websocket.Conn
	srv *Services

	send   chan Envelope
	cancel context.CancelFunc

	mu       sync.Mutex
	status   core.Status
	identity *core.Identity
	session  *core.Session
	handlers map[string]handlerFunc
	closed   bool

	closeOnce sync.Once
}

func newConn(ws *websocket.Conn, srv *Services, cancel context.CancelFunc) *Conn {
	c := &Conn{
		ws:     ws,
		srv:    srv,
		send:   make(chan Envelope, sendQueueSize),
		cancel: cancel,
	}
	c.mu.Lock()
	c.status = core.StatusUnauthenticated
	c.handlers = c.handlerTable(core.StatusUnauthenticated)
	c.mu.Unlock()
	return c
}

// Send queues an event for the client. Never blocks; when the outbound
// queue is full the event is dropped with a warning.
func (c *Conn) Send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	select {
	case c.send <- Envelope{Event: event, Data: data}:
		return nil
	default:
		c.srv.Log.Warn("send queue full, dropping event", "event", event)
		return fmt.Errorf("send queue full for %s", event)
	}
}

// Promote flips the connection to authenticated and swaps the accepted
// handler set in one critical section. The login handler is removed before
// the post-login handlers are installed, so no event is ever dispatched
// against a stale status.
func (c *Conn) Promote(identity *core.Identity, session *core.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = identity
	c.session = session
	c.status = core.StatusAuthenticated
	if !c.closed {
		c.handlers = c.handlerTable(core.StatusAuthenticated)
	}
}

// Closed reports whether teardown already ran for this connection.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Identity returns the authenticated identity, or nil before login.
func (c *Conn) Identity() *core.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// close tears the connection down: presence unregistration, handler
// deregistration, transport close. Idempotent; the cleanup runs once no
// matter how many paths reach it.
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		identity := c.identity
		c.handlers = map[string]handlerFunc{}
		c.closed = true
		c.mu.Unlock()

		// A teardown landing between promotion and registration finds
		// nothing to unregister here; Authenticate re-checks Closed after
		// registering and takes the connection back out.
		if identity != nil {
			c.srv.Auth.Disconnect(context.Background(), identity.UID, c)
		}
		c.cancel()
		c.ws.Close()
	})
}

// readPump reads frames off the socket and dispatches them through the
// current handler table. Events with no handler in the current status are
// dropped; a pre-login getFriends never reaches the friend overlay.
func (c *Conn) readPump(ctx context.Context) {
	defer c.close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.srv.Log.Warn("read failed", "err", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.srv.Log.Warn("unparseable frame", "err", err)
			continue
		}

		c.mu.Lock()
		h := c.handlers[env.Event]
		c.mu.Unlock()

		if h == nil {
			c.srv.Log.Debug("event not accepted in current status", "event", env.Event)
			continue
		}
		h(ctx, env.Data)
	}
}

// writePump drains the send queue onto the socket and keeps the connection
// alive with pings.
func (c *Conn) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(env); err != nil {
				c.srv.Log.Warn("write failed", "event", env.Event, "err", err)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
