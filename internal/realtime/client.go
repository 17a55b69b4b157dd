package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"bandstand/internal/domain/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// Client is one authenticated websocket connection.
type Client struct {
	id        string
	principal models.Principal
	gateway   *Gateway
	conn      *websocket.Conn
	send      chan []byte
}

// clientFrame is the only message shape clients send: explicit room
// joins and leaves. Everything else flows server to client.
type clientFrame struct {
	Type      string `json:"type"`
	SetlistID string `json:"setlistId"`
}

// readPump consumes client frames until the connection drops, then
// detaches the client from the hub. A disconnect removes room
// membership and nothing else; no presence event is emitted for it.
func (c *Client) readPump() {
	defer func() {
		c.gateway.disconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			continue
		}
		switch frame.Type {
		case "join-setlist":
			if frame.SetlistID != "" {
				c.gateway.joinSetlist(c, frame.SetlistID)
			}
		case "leave-setlist":
			if frame.SetlistID != "" {
				c.gateway.leaveSetlist(c, frame.SetlistID)
			}
		}
	}
}

// writePump drains the send channel and keeps the connection alive with
// pings. The hub closes the send channel to shut the connection down.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
