package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bandstand/internal/domain"
	"bandstand/internal/domain/models"
	"bandstand/internal/domain/repositories"
	"bandstand/internal/domain/services"
)

// versionNumberRetries bounds how often CreateVersion re-reads the max
// version number after losing the race for it.
const versionNumberRetries = 3

// versionService implements the VersionService interface. Version
// numbering is serialized by the (setlist_id, version_number) unique
// constraint: losers of a concurrent insert retry with the next number.
type versionService struct {
	setlistAccess
	items       repositories.ItemRepository
	versions    repositories.VersionRepository
	txManager   repositories.TransactionManager
	broadcaster services.Broadcaster
	logger      *slog.Logger
}

// NewVersionService creates a new version service.
func NewVersionService(
	setlists repositories.SetlistRepository,
	items repositories.ItemRepository,
	versions repositories.VersionRepository,
	txManager repositories.TransactionManager,
	authorizer services.SetlistAuthorizer,
	broadcaster services.Broadcaster,
	logger *slog.Logger,
) services.VersionService {
	return &versionService{
		setlistAccess: setlistAccess{setlists: setlists, authorizer: authorizer},
		items:         items,
		versions:      versions,
		txManager:     txManager,
		broadcaster:   broadcaster,
		logger:        logger,
	}
}

// CreateVersion snapshots the current ordered item list under the next
// free version number.
func (s *versionService) CreateVersion(ctx context.Context, userID, setlistID string, req *services.CreateVersionRequest) (*models.SetlistVersion, error) {
	if _, err := s.forWrite(ctx, userID, setlistID); err != nil {
		return nil, err
	}

	items, err := s.items.ListBySetlist(ctx, setlistID)
	if err != nil {
		return nil, err
	}

	version := &models.SetlistVersion{
		SetlistID: setlistID,
		CreatedBy: userID,
		Notes:     req.Notes,
		Snapshot:  models.SnapshotOf(items),
	}

	for attempt := 0; ; attempt++ {
		max, err := s.versions.MaxVersionNumber(ctx, setlistID)
		if err != nil {
			return nil, err
		}
		version.VersionNumber = max + 1

		err = s.versions.Create(ctx, version)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) || attempt >= versionNumberRetries {
			return nil, err
		}
		s.logger.Debug("version number taken, retrying",
			"setlist_id", setlistID,
			"version_number", version.VersionNumber,
		)
	}

	s.logger.Info("version created",
		"setlist_id", setlistID,
		"version_id", version.ID,
		"version_number", version.VersionNumber,
	)
	return version, nil
}

// ListVersions returns versions ascending by number, without payloads.
func (s *versionService) ListVersions(ctx context.Context, userID, setlistID string) ([]models.SetlistVersion, error) {
	if _, err := s.forRead(ctx, userID, setlistID); err != nil {
		return nil, err
	}
	return s.versions.ListBySetlist(ctx, setlistID)
}

// GetVersion returns the full snapshot payload.
func (s *versionService) GetVersion(ctx context.Context, userID, setlistID, versionID string) (*models.SetlistVersion, error) {
	if _, err := s.forRead(ctx, userID, setlistID); err != nil {
		return nil, err
	}
	return s.versions.GetByID(ctx, setlistID, versionID)
}

// Restore replaces the live item set with the snapshot's contents.
// Deletion and recreation happen in one transaction, so readers never
// observe a partial item set. The pre-restore state is not snapshotted
// automatically.
func (s *versionService) Restore(ctx context.Context, userID, setlistID, versionID string) (*models.Setlist, error) {
	setlist, err := s.forWrite(ctx, userID, setlistID)
	if err != nil {
		return nil, err
	}

	version, err := s.versions.GetByID(ctx, setlistID, versionID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.items.DeleteAllBySetlist(txCtx, setlistID); err != nil {
			return err
		}
		for _, snap := range version.Snapshot {
			item := &models.SetlistItem{
				SetlistID:      setlistID,
				SongID:         snap.SongID,
				Position:       snap.Position,
				SetNumber:      snap.SetNumber,
				CustomKey:      snap.CustomKey,
				CustomTempo:    snap.CustomTempo,
				CustomDuration: snap.CustomDuration,
				Notes:          snap.Notes,
			}
			if err := s.items.Create(txCtx, item); err != nil {
				return fmt.Errorf("recreate item from snapshot: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListBySetlist(ctx, setlistID)
	if err != nil {
		return nil, err
	}
	setlist.Items = items

	s.logger.Info("version restored",
		"setlist_id", setlistID,
		"version_id", versionID,
		"version_number", version.VersionNumber,
	)
	s.broadcaster.SetlistUpdated(setlistID, setlist)

	return setlist, nil
}
