package ws

import (
	"time"

	"github.com/gorilla/websocket"

	"merac_backend/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client - одно ws-соединение пользователя
type Client struct {
	UserID string
	hub    *Hub
	conn   *websocket.Conn
	Send   chan []byte
}

// NewClient регистрирует соединение в хабе и запускает обе прокачки
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	c := &Client{
		UserID: userID,
		hub:    hub,
		conn:   conn,
		Send:   make(chan []byte, 16),
	}
	hub.register(c)
	go c.writePump()
	go c.readPump()
	return c
}

// readPump держит соединение живым и замечает разрыв.
// Входящие сообщения не несут смысла, канал односторонний.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws: unexpected close", "user_id", c.UserID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
