package services

import (
	"context"

	"bandstand/internal/domain/models"
)

// VersionService captures and restores point-in-time setlist state.
type VersionService interface {
	// CreateVersion snapshots the current ordered item list under the next
	// free version number. Numbering is race-free under concurrent calls.
	CreateVersion(ctx context.Context, userID, setlistID string, req *CreateVersionRequest) (*models.SetlistVersion, error)

	// ListVersions returns versions ascending by number, without payloads.
	ListVersions(ctx context.Context, userID, setlistID string) ([]models.SetlistVersion, error)

	// GetVersion returns the full snapshot payload.
	GetVersion(ctx context.Context, userID, setlistID, versionID string) (*models.SetlistVersion, error)

	// Restore atomically replaces the live item set with the snapshot's
	// contents. The pre-restore state is not snapshotted automatically.
	Restore(ctx context.Context, userID, setlistID, versionID string) (*models.Setlist, error)
}

// CreateVersionRequest carries the optional annotation for a snapshot.
type CreateVersionRequest struct {
	Notes *string `json:"notes,omitempty"`
}
