// internal/websocket/client.go
package websocket

import (
	"context"
	"time"

	"visrec-admin/internal/authstate"
	wstypes "visrec-admin/internal/domain/websocket"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Client streams the auth state of one session to a browser.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	states    <-chan authstate.State
	stop      func()
	send      chan []byte
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewClient(conn *websocket.Conn, sessionID string, machine *authstate.Machine, logger *zap.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	states, stop := machine.Subscribe()

	return &Client{
		conn:      conn,
		sessionID: sessionID,
		states:    states,
		stop:      stop,
		send:      make(chan []byte, 16),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Run serves the connection until either side goes away.
func (c *Client) Run() {
	go c.WritePump()
	c.ReadPump()
}

// ReadPump handles incoming messages from client
func (c *Client) ReadPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket error", zap.String("session_id", c.sessionID), zap.Error(err))
			}
			return
		}
		c.handleMessage(message)
	}
}

// WritePump forwards state changes, replies and pings to the client
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	states := c.states

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case state, ok := <-states:
			if !ok {
				// machine closed, e.g. evicted
				states = nil
				c.cancel()
				continue
			}
			if err := c.writeMessage(wstypes.NewMessage(wstypes.EventTypeAuthState, state.Response())); err != nil {
				return
			}

		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeMessage(msg *wstypes.WSMessage) error {
	data, err := msg.ToJSON()
	if err != nil {
		return err
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// handleMessage answers client pings; the stream is otherwise one-way
func (c *Client) handleMessage(data []byte) {
	msg, err := wstypes.ParseMessage(data)
	if err != nil {
		c.enqueue(wstypes.NewMessage(wstypes.EventTypeError, wstypes.ErrorData{
			Code:    "invalid_message",
			Message: "Failed to parse message",
		}))
		return
	}

	if msg.Type == wstypes.EventTypePing {
		c.enqueue(wstypes.NewMessage(wstypes.EventTypePong, nil))
	}
}

func (c *Client) enqueue(msg *wstypes.WSMessage) {
	data, err := msg.ToJSON()
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	case <-c.ctx.Done():
	default:
		// slow reader, drop the reply
	}
}

// Close stops the state subscription and both pumps
func (c *Client) Close() {
	c.stop()
	c.cancel()
}
