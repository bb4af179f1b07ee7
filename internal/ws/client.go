package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cantorhq/cantor/internal/model"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
	sendQueueSize  = 32
)

// Coordinator is the slice of the session coordinator the transport needs
type Coordinator interface {
	HandleConnect(conn model.ConnID, key model.RoomKey, playerID model.PlayerID, displayName string, balance int)
	HandleCommand(conn model.ConnID, cmd model.Command)
	HandleDisconnect(conn model.ConnID)
}

// Client is one websocket connection's read/write pumps. The read pump
// parses commands and hands them to the coordinator; the write pump drains
// the send queue the hub fills.
type Client struct {
	id    model.ConnID
	conn  *websocket.Conn
	hub   *Hub
	coord Coordinator
	send  chan []byte
	once  sync.Once

	logger *slog.Logger
}

// NewClient wraps an upgraded connection
func NewClient(id model.ConnID, conn *websocket.Conn, hub *Hub, coord Coordinator, logger *slog.Logger) *Client {
	return &Client{
		id:     id,
		conn:   conn,
		hub:    hub,
		coord:  coord,
		send:   make(chan []byte, sendQueueSize),
		logger: logger.With(slog.String("conn", string(id))),
	}
}

// Close tears the underlying connection down once. The send queue belongs to
// the hub and is closed on Unregister, never here.
func (c *Client) Close() {
	c.once.Do(func() {
		_ = c.conn.Close()
	})
}

// Start launches the pumps
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump reads commands until the connection drops, then reports the
// disconnect so the player's grace window starts
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c.id)
		c.coord.HandleDisconnect(c.id)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info("read error", slog.String("error", err.Error()))
			}
			return
		}

		cmd, err := model.ParseCommand(data)
		if err != nil {
			c.logger.Info("rejected command", slog.String("error", err.Error()))
			c.hub.Send(c.id, model.Event{
				Type: model.EventError,
				To:   c.id,
				Data: model.ErrorPayload{Code: "bad_command", Message: err.Error()},
			})
			continue
		}

		c.coord.HandleCommand(c.id, cmd)
	}
}

// writePump drains the send queue and keeps the connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
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
