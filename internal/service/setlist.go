package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"bandstand/internal/domain"
	"bandstand/internal/domain/models"
	"bandstand/internal/domain/repositories"
	"bandstand/internal/domain/services"
)

const maxTitleLength = 100

// setlistService implements the SetlistService interface and owns the
// cascade-delete transaction.
type setlistService struct {
	setlistAccess
	items       repositories.ItemRepository
	versions    repositories.VersionRepository
	comments    repositories.CommentRepository
	songs       repositories.SongRepository
	members     repositories.MembershipRepository
	txManager   repositories.TransactionManager
	broadcaster services.Broadcaster
	logger      *slog.Logger
}

// NewSetlistService creates a new setlist service.
func NewSetlistService(
	setlists repositories.SetlistRepository,
	items repositories.ItemRepository,
	versions repositories.VersionRepository,
	comments repositories.CommentRepository,
	songs repositories.SongRepository,
	members repositories.MembershipRepository,
	txManager repositories.TransactionManager,
	authorizer services.SetlistAuthorizer,
	broadcaster services.Broadcaster,
	logger *slog.Logger,
) services.SetlistService {
	return &setlistService{
		setlistAccess: setlistAccess{setlists: setlists, authorizer: authorizer},
		items:         items,
		versions:      versions,
		comments:      comments,
		songs:         songs,
		members:       members,
		txManager:     txManager,
		broadcaster:   broadcaster,
		logger:        logger,
	}
}

func validateCreateSetlist(req *services.CreateSetlistRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, maxTitleLength)),
		validation.Field(&req.BandID, is.UUID),
		validation.Field(&req.TotalDuration, validation.Min(0)),
	)
}

// CreateSetlist creates a setlist owned by the caller. A band setlist
// requires the caller to be a member of that band.
func (s *setlistService) CreateSetlist(ctx context.Context, userID string, req *services.CreateSetlistRequest) (*models.Setlist, error) {
	if err := validateCreateSetlist(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.BandID != nil {
		member, err := s.members.IsMember(ctx, *req.BandID, userID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, &domain.ForbiddenError{Message: "not a member of this band"}
		}
	}

	setlist := &models.Setlist{
		Title:         req.Title,
		Description:   req.Description,
		BandID:        req.BandID,
		CreatedBy:     userID,
		IsPublic:      req.IsPublic,
		EventDate:     req.EventDate,
		Venue:         req.Venue,
		TotalDuration: req.TotalDuration,
	}
	if err := s.setlists.Create(ctx, setlist); err != nil {
		return nil, err
	}

	s.logger.Info("setlist created", "setlist_id", setlist.ID, "user_id", userID)
	return setlist, nil
}

// GetSetlist returns the setlist with its ordered items.
func (s *setlistService) GetSetlist(ctx context.Context, userID, setlistID string) (*models.Setlist, error) {
	setlist, err := s.forRead(ctx, userID, setlistID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListBySetlist(ctx, setlistID)
	if err != nil {
		return nil, err
	}
	setlist.Items = items
	return setlist, nil
}

// ListSetlists returns the setlists visible to the caller.
func (s *setlistService) ListSetlists(ctx context.Context, userID string) ([]models.Setlist, error) {
	return s.setlists.ListForUser(ctx, userID)
}

func validateUpdateSetlist(req *services.UpdateSetlistRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Length(1, maxTitleLength)),
		validation.Field(&req.TotalDuration, validation.Min(0)),
	)
}

// UpdateSetlist applies partial metadata updates. TotalDuration is
// written as given; it is never recomputed from item durations.
func (s *setlistService) UpdateSetlist(ctx context.Context, userID, setlistID string, req *services.UpdateSetlistRequest) (*models.Setlist, error) {
	if err := validateUpdateSetlist(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	setlist, err := s.forWrite(ctx, userID, setlistID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		setlist.Title = *req.Title
	}
	if req.Description != nil {
		setlist.Description = req.Description
	}
	if req.IsPublic != nil {
		setlist.IsPublic = *req.IsPublic
	}
	if req.EventDate != nil {
		setlist.EventDate = req.EventDate
	}
	if req.Venue != nil {
		setlist.Venue = req.Venue
	}
	if req.TotalDuration != nil {
		setlist.TotalDuration = req.TotalDuration
	}

	if err := s.setlists.Update(ctx, setlist); err != nil {
		return nil, err
	}

	s.broadcaster.SetlistUpdated(setlistID, setlist)
	return setlist, nil
}

// DeleteSetlist tombstones the setlist and removes its items, versions
// and comments in the same transaction, so the cascade is atomic with
// the parent delete.
func (s *setlistService) DeleteSetlist(ctx context.Context, userID, setlistID string) error {
	setlist, err := s.setlists.GetByID(ctx, setlistID)
	if err != nil {
		return err
	}
	if setlist.CreatedBy != userID {
		return &domain.ForbiddenError{Message: "only the creator can delete a setlist"}
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.items.DeleteAllBySetlist(txCtx, setlistID); err != nil {
			return err
		}
		if err := s.versions.DeleteAllBySetlist(txCtx, setlistID); err != nil {
			return err
		}
		if err := s.comments.DeleteAllBySetlist(txCtx, setlistID); err != nil {
			return err
		}
		return s.setlists.SoftDelete(txCtx, setlistID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("setlist deleted", "setlist_id", setlistID, "user_id", userID)
	return nil
}

// ExportSetlist renders the ordered item list as CSV or plain text.
func (s *setlistService) ExportSetlist(ctx context.Context, userID, setlistID, format string) ([]byte, string, error) {
	setlist, err := s.forRead(ctx, userID, setlistID)
	if err != nil {
		return nil, "", err
	}
	items, err := s.items.ListBySetlist(ctx, setlistID)
	if err != nil {
		return nil, "", err
	}

	songIDs := make([]string, 0, len(items))
	for _, it := range items {
		songIDs = append(songIDs, it.SongID)
	}
	songs, err := s.songs.GetByIDs(ctx, songIDs)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case "", "txt":
		return exportText(setlist, items, songs), "text/plain; charset=utf-8", nil
	case "csv":
		data, err := exportCSV(items, songs)
		if err != nil {
			return nil, "", err
		}
		return data, "text/csv; charset=utf-8", nil
	default:
		return nil, "", &domain.ValidationError{Message: fmt.Sprintf("unsupported export format %q", format)}
	}
}

func songTitle(songs map[string]models.Song, songID string) string {
	if song, ok := songs[songID]; ok {
		return song.Title
	}
	return songID
}

func exportText(setlist *models.Setlist, items []models.SetlistItem, songs map[string]models.Song) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", setlist.Title)
	if setlist.Venue != nil {
		fmt.Fprintf(&buf, "Venue: %s\n", *setlist.Venue)
	}

	currentSet := 0
	number := 0
	for _, it := range items {
		if it.SetNumber != currentSet {
			currentSet = it.SetNumber
			number = 0
			fmt.Fprintf(&buf, "\nSet %d\n", currentSet)
		}
		number++
		fmt.Fprintf(&buf, "%d. %s", number, songTitle(songs, it.SongID))
		if it.CustomKey != nil {
			fmt.Fprintf(&buf, " (%s)", *it.CustomKey)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func exportCSV(items []models.SetlistItem, songs map[string]models.Song) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"set", "position", "song", "key", "tempo", "duration", "notes"}); err != nil {
		return nil, err
	}
	for _, it := range items {
		record := []string{
			strconv.Itoa(it.SetNumber),
			strconv.Itoa(it.Position),
			songTitle(songs, it.SongID),
			stringOrEmpty(it.CustomKey),
			intOrEmpty(it.CustomTempo),
			intOrEmpty(it.CustomDuration),
			stringOrEmpty(it.Notes),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrEmpty(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
