package realtime

// Event names on the server-to-client channel.
const (
	EventUserJoined         = "user-joined"
	EventUserLeft           = "user-left"
	EventSetlistUpdated     = "setlist-updated"
	EventSetlistItemUpdated = "setlist-item-updated"
	EventSetlistReordered   = "setlist-reordered"
	EventNewComment         = "new-comment"
	EventNotification       = "notification"
)

// Event is the frame delivered to clients.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}
