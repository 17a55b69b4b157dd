package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"bandstand/internal/domain/models"
)

// redisChannel is the single pub/sub channel all instances share.
// Envelopes carry the room, so one channel is enough and per-room
// ordering follows publish order.
const redisChannel = "bandstand:events"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin browsers are expected; the bearer check in front of
	// the upgrade is the actual gate.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// envelope is the wire format on the redis channel.
type envelope struct {
	Room  string          `json:"room"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	// ExcludeConn skips the acting connection on presence events. Only
	// the instance owning that connection recognizes the ID; everywhere
	// else it excludes nobody.
	ExcludeConn string `json:"exclude_conn,omitempty"`
}

// Gateway is the process-scoped broadcast service: it upgrades
// connections, tracks room membership through the hub, and fans
// committed state out to every instance through redis. It is
// constructed once in main and injected into the services that need to
// broadcast.
type Gateway struct {
	hub    *Hub
	rdb    *redis.Client
	logger *slog.Logger
}

// NewGateway creates a gateway over the given hub and redis client.
func NewGateway(hub *Hub, rdb *redis.Client, logger *slog.Logger) *Gateway {
	return &Gateway{hub: hub, rdb: rdb, logger: logger}
}

// Run subscribes to the shared channel and forwards envelopes to local
// room members. It returns when ctx is canceled.
func (g *Gateway) Run(ctx context.Context) {
	sub := g.rdb.Subscribe(ctx, redisChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				g.logger.Warn("dropping malformed envelope", "error", err)
				continue
			}
			frame, err := json.Marshal(Event{Event: env.Event, Data: env.Data})
			if err != nil {
				continue
			}
			g.hub.Deliver(env.Room, frame, env.ExcludeConn)
		}
	}
}

// HandleWS upgrades an already-authenticated request to a websocket,
// registers the client and joins it to its personal room.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request, principal models.Principal) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		id:        uuid.NewString(),
		principal: principal,
		gateway:   g,
		conn:      conn,
		send:      make(chan []byte, 256),
	}
	g.hub.Register(client)
	g.hub.Join(client, userRoom(principal.UserID))

	g.logger.Info("client connected", "user_id", principal.UserID, "conn_id", client.id)

	go client.writePump()
	go client.readPump()
}

func setlistRoom(setlistID string) string { return "setlist:" + setlistID }
func userRoom(userID string) string       { return "user:" + userID }

func (g *Gateway) joinSetlist(c *Client, setlistID string) {
	g.hub.Join(c, setlistRoom(setlistID))
	g.publish(setlistRoom(setlistID), EventUserJoined, presence(c.principal), c.id)
}

func (g *Gateway) leaveSetlist(c *Client, setlistID string) {
	g.hub.Leave(c, setlistRoom(setlistID))
	g.publish(setlistRoom(setlistID), EventUserLeft, presence(c.principal), c.id)
}

func (g *Gateway) disconnect(c *Client) {
	g.hub.Unregister(c)
	g.logger.Info("client disconnected", "user_id", c.principal.UserID, "conn_id", c.id)
}

func presence(p models.Principal) map[string]interface{} {
	return map[string]interface{}{
		"userId":    p.UserID,
		"username":  p.Username,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// publish pushes an envelope to redis. A broadcast failure is logged,
// never surfaced: the mutation is already committed and clients
// reconverge on their next read.
func (g *Gateway) publish(room, event string, data interface{}, excludeConn string) {
	raw, err := json.Marshal(data)
	if err != nil {
		g.logger.Error("marshal broadcast payload", "event", event, "error", err)
		return
	}
	payload, err := json.Marshal(envelope{
		Room:        room,
		Event:       event,
		Data:        raw,
		ExcludeConn: excludeConn,
	})
	if err != nil {
		g.logger.Error("marshal broadcast envelope", "event", event, "error", err)
		return
	}
	if err := g.rdb.Publish(context.Background(), redisChannel, payload).Err(); err != nil {
		g.logger.Error("publish broadcast", "event", event, "room", room, "error", err)
	}
}

// SetlistUpdated implements services.Broadcaster.
func (g *Gateway) SetlistUpdated(setlistID string, payload interface{}) {
	g.publish(setlistRoom(setlistID), EventSetlistUpdated, payload, "")
}

// SetlistItemUpdated implements services.Broadcaster.
func (g *Gateway) SetlistItemUpdated(setlistID string, payload interface{}) {
	g.publish(setlistRoom(setlistID), EventSetlistItemUpdated, payload, "")
}

// SetlistReordered implements services.Broadcaster.
func (g *Gateway) SetlistReordered(setlistID string, payload interface{}) {
	g.publish(setlistRoom(setlistID), EventSetlistReordered, payload, "")
}

// NewComment implements services.Broadcaster.
func (g *Gateway) NewComment(setlistID string, payload interface{}) {
	g.publish(setlistRoom(setlistID), EventNewComment, payload, "")
}

// Notify implements services.Broadcaster.
func (g *Gateway) Notify(userID string, payload interface{}) {
	g.publish(userRoom(userID), EventNotification, payload, "")
}
