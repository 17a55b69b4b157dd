package realtime

// Hub owns the room membership table. All mutation goes through its run
// loop, so no locking is needed anywhere else. Membership is ephemeral:
// it exists only as long as the connections do.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	join       chan subscription
	leave      chan subscription
	deliver    chan delivery

	// rooms maps room name -> members; memberships is the reverse index
	// used to clean up a disconnecting client.
	rooms       map[string]map[*Client]bool
	memberships map[*Client]map[string]bool
}

type subscription struct {
	client *Client
	room   string
}

type delivery struct {
	room    string
	message []byte
	// excludeConn skips one connection, used for presence events so the
	// acting client does not see its own join/leave.
	excludeConn string
}

// NewHub creates a hub. Run must be started on its own goroutine.
func NewHub() *Hub {
	return &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		join:        make(chan subscription),
		leave:       make(chan subscription),
		deliver:     make(chan delivery, 64),
		rooms:       make(map[string]map[*Client]bool),
		memberships: make(map[*Client]map[string]bool),
	}
}

// Run processes registrations, room changes and deliveries until the
// process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.memberships[client] = make(map[string]bool)

		case client := <-h.unregister:
			if _, ok := h.memberships[client]; !ok {
				continue
			}
			for room := range h.memberships[client] {
				h.removeFromRoom(client, room)
			}
			delete(h.memberships, client)
			close(client.send)

		case sub := <-h.join:
			if _, ok := h.memberships[sub.client]; !ok {
				continue
			}
			if h.rooms[sub.room] == nil {
				h.rooms[sub.room] = make(map[*Client]bool)
			}
			h.rooms[sub.room][sub.client] = true
			h.memberships[sub.client][sub.room] = true

		case sub := <-h.leave:
			h.removeFromRoom(sub.client, sub.room)
			if m, ok := h.memberships[sub.client]; ok {
				delete(m, sub.room)
			}

		case d := <-h.deliver:
			for client := range h.rooms[d.room] {
				if d.excludeConn != "" && client.id == d.excludeConn {
					continue
				}
				select {
				case client.send <- d.message:
				default:
					// Slow consumer: drop the connection rather than the
					// whole room's throughput.
					for room := range h.memberships[client] {
						h.removeFromRoom(client, room)
					}
					delete(h.memberships, client)
					close(client.send)
				}
			}
		}
	}
}

func (h *Hub) removeFromRoom(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(client *Client) { h.register <- client }

// Unregister removes a connection from the hub and all its rooms.
func (h *Hub) Unregister(client *Client) { h.unregister <- client }

// Join adds a client to a room.
func (h *Hub) Join(client *Client, room string) { h.join <- subscription{client: client, room: room} }

// Leave removes a client from a room.
func (h *Hub) Leave(client *Client, room string) { h.leave <- subscription{client: client, room: room} }

// Deliver sends a message to every member of a room, optionally
// skipping one connection.
func (h *Hub) Deliver(room string, message []byte, excludeConn string) {
	h.deliver <- delivery{room: room, message: message, excludeConn: excludeConn}
}
