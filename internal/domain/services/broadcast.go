package services

// Broadcaster fans committed state out to clients watching a setlist.
// Services call it synchronously after a successful commit, never
// before, so broadcast order follows commit order within a room.
type Broadcaster interface {
	// SetlistUpdated announces metadata changes and restores; payload is
	// the full updated setlist.
	SetlistUpdated(setlistID string, payload interface{})

	// SetlistItemUpdated announces a single item insert/update/remove;
	// payload is the resulting item state (or the removal notice).
	SetlistItemUpdated(setlistID string, payload interface{})

	// SetlistReordered announces a committed reorder; payload is the full
	// resulting item list.
	SetlistReordered(setlistID string, payload interface{})

	// NewComment announces a comment added to the setlist's thread.
	NewComment(setlistID string, payload interface{})

	// Notify delivers to one user's personal channel.
	Notify(userID string, payload interface{})
}

// NopBroadcaster discards all events. Used in tests and tooling that
// runs the services without a realtime gateway.
type NopBroadcaster struct{}

func (NopBroadcaster) SetlistUpdated(string, interface{})     {}
func (NopBroadcaster) SetlistItemUpdated(string, interface{}) {}
func (NopBroadcaster) SetlistReordered(string, interface{})   {}
func (NopBroadcaster) NewComment(string, interface{})         {}
func (NopBroadcaster) Notify(string, interface{})             {}
