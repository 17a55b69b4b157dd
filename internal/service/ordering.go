package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"bandstand/internal/domain"
	"bandstand/internal/domain/models"
	"bandstand/internal/domain/repositories"
	"bandstand/internal/domain/services"
)

const defaultSetNumber = 1

// orderingService implements the OrderingService interface. All
// multi-row position changes run inside one transaction; the deferred
// uniqueness constraint on (setlist, set, position) checks the invariant
// at commit.
type orderingService struct {
	setlistAccess
	items       repositories.ItemRepository
	songs       repositories.SongRepository
	txManager   repositories.TransactionManager
	broadcaster services.Broadcaster
	logger      *slog.Logger
}

// NewOrderingService creates a new ordering service.
func NewOrderingService(
	setlists repositories.SetlistRepository,
	items repositories.ItemRepository,
	songs repositories.SongRepository,
	txManager repositories.TransactionManager,
	authorizer services.SetlistAuthorizer,
	broadcaster services.Broadcaster,
	logger *slog.Logger,
) services.OrderingService {
	return &orderingService{
		setlistAccess: setlistAccess{setlists: setlists, authorizer: authorizer},
		items:         items,
		songs:         songs,
		txManager:     txManager,
		broadcaster:   broadcaster,
		logger:        logger,
	}
}

// setNumberAtLeastOne rejects a supplied set number below 1. Threshold
// rules treat zero as empty and skip it, so the guard is explicit.
func setNumberAtLeastOne(value interface{}) error {
	if n, ok := value.(*int); ok && n != nil && *n < 1 {
		return errors.New("must be no less than 1")
	}
	return nil
}

func validateAddItem(req *services.AddItemRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.SongID, validation.Required, is.UUID),
		validation.Field(&req.Position, validation.Min(0)),
		validation.Field(&req.SetNumber, validation.By(setNumberAtLeastOne)),
		validation.Field(&req.CustomTempo, validation.Min(0), validation.Max(300)),
		validation.Field(&req.CustomDuration, validation.Min(0)),
	)
}

// AddItem inserts a song into a setlist. An explicit position shifts the
// set's items at or after it down by one; an omitted position appends
// after the set's current maximum.
func (s *orderingService) AddItem(ctx context.Context, userID, setlistID string, req *services.AddItemRequest) (*models.SetlistItem, error) {
	if err := validateAddItem(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.forWrite(ctx, userID, setlistID); err != nil {
		return nil, err
	}

	exists, err := s.songs.Exists(ctx, req.SongID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("song %s not found", req.SongID)}
	}

	setNumber := defaultSetNumber
	if req.SetNumber != nil {
		setNumber = *req.SetNumber
	}

	item := &models.SetlistItem{
		SetlistID:      setlistID,
		SongID:         req.SongID,
		SetNumber:      setNumber,
		CustomKey:      req.CustomKey,
		CustomTempo:    req.CustomTempo,
		CustomDuration: req.CustomDuration,
		Notes:          req.Notes,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if req.Position == nil {
			max, ok, err := s.items.MaxPosition(txCtx, setlistID, setNumber)
			if err != nil {
				return err
			}
			if ok {
				item.Position = max + 1
			}
		} else {
			item.Position = *req.Position
			if err := s.items.ShiftPositions(txCtx, setlistID, setNumber, item.Position); err != nil {
				return err
			}
		}
		return s.items.Create(txCtx, item)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item added",
		"setlist_id", setlistID,
		"item_id", item.ID,
		"position", item.Position,
		"set_number", item.SetNumber,
	)
	s.broadcaster.SetlistItemUpdated(setlistID, item)

	return item, nil
}

func validateUpdateItem(req *services.UpdateItemRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.CustomTempo, validation.Min(0), validation.Max(300)),
		validation.Field(&req.CustomDuration, validation.Min(0)),
		validation.Field(&req.SetNumber, validation.By(setNumberAtLeastOne)),
	)
}

// UpdateItem changes override fields. Within a set the position never
// moves; when the item switches sets it is appended after the target
// set's last position so the per-set unique constraint stays clear.
func (s *orderingService) UpdateItem(ctx context.Context, userID, setlistID, itemID string, req *services.UpdateItemRequest) (*models.SetlistItem, error) {
	if err := validateUpdateItem(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.forWrite(ctx, userID, setlistID); err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, setlistID, itemID)
	if err != nil {
		return nil, err
	}

	if req.CustomKey != nil {
		item.CustomKey = req.CustomKey
	}
	if req.CustomTempo != nil {
		item.CustomTempo = req.CustomTempo
	}
	if req.CustomDuration != nil {
		item.CustomDuration = req.CustomDuration
	}
	if req.Notes != nil {
		item.Notes = req.Notes
	}

	movesSet := req.SetNumber != nil && *req.SetNumber != item.SetNumber
	if req.SetNumber != nil {
		item.SetNumber = *req.SetNumber
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		newPos := 0
		if movesSet {
			max, ok, err := s.items.MaxPosition(txCtx, setlistID, item.SetNumber)
			if err != nil {
				return err
			}
			if ok {
				newPos = max + 1
			}
		}
		if err := s.items.Update(txCtx, item); err != nil {
			return err
		}
		if !movesSet {
			return nil
		}
		if err := s.items.UpdatePositions(txCtx, setlistID, []models.PositionAssignment{
			{ItemID: item.ID, Position: newPos},
		}); err != nil {
			return err
		}
		item.Position = newPos
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcaster.SetlistItemUpdated(setlistID, item)
	return item, nil
}

// RemoveItem deletes the item without renumbering the remainder; gaps
// are fine because readers sort by position.
func (s *orderingService) RemoveItem(ctx context.Context, userID, setlistID, itemID string) error {
	setlist, err := s.forWrite(ctx, userID, setlistID)
	if err != nil {
		return err
	}

	if err := s.items.Delete(ctx, setlistID, itemID); err != nil {
		return err
	}

	items, err := s.items.ListBySetlist(ctx, setlistID)
	if err != nil {
		return err
	}
	setlist.Items = items

	s.logger.Info("item removed", "setlist_id", setlistID, "item_id", itemID)
	s.broadcaster.SetlistUpdated(setlistID, setlist)
	return nil
}

func validateReorder(req *services.ReorderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ItemIDs,
			validation.Required,
			validation.Each(is.UUID),
		),
	)
}

// Reorder assigns positions 0..N-1 per set-number group in the supplied
// order. The whole call is last-write-wins: it overwrites whatever
// ordering was committed before it, with no merging.
func (s *orderingService) Reorder(ctx context.Context, userID, setlistID string, req *services.ReorderRequest) ([]models.SetlistItem, error) {
	if err := validateReorder(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	seen := make(map[string]bool, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		if seen[id] {
			return nil, &domain.ValidationError{Message: fmt.Sprintf("duplicate item id %s", id)}
		}
		seen[id] = true
	}

	if _, err := s.forWrite(ctx, userID, setlistID); err != nil {
		return nil, err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := s.items.ListBySetlist(txCtx, setlistID)
		if err != nil {
			return err
		}

		byID := make(map[string]*models.SetlistItem, len(current))
		for i := range current {
			byID[current[i].ID] = &current[i]
		}

		// Every supplied ID must belong to the setlist before anything
		// moves.
		var unknown []string
		for _, id := range req.ItemIDs {
			if _, ok := byID[id]; !ok {
				unknown = append(unknown, id)
			}
		}
		if len(unknown) > 0 {
			return &domain.ValidationError{
				Message:    fmt.Sprintf("items do not belong to setlist %s: %v", setlistID, unknown),
				UnknownIDs: unknown,
			}
		}

		// Number each referenced set independently, in the supplied
		// relative order.
		nextPos := make(map[int]int)
		assignments := make([]models.PositionAssignment, 0, len(current))
		for _, id := range req.ItemIDs {
			set := byID[id].SetNumber
			assignments = append(assignments, models.PositionAssignment{
				ItemID:   id,
				Position: nextPos[set],
			})
			nextPos[set]++
		}

		// Items of a referenced set that the caller left out keep their
		// relative order after the listed block, so a partial reorder
		// still commits with unique positions. Unreferenced sets are
		// untouched.
		for _, it := range current {
			if seen[it.ID] {
				continue
			}
			if _, touched := nextPos[it.SetNumber]; !touched {
				continue
			}
			assignments = append(assignments, models.PositionAssignment{
				ItemID:   it.ID,
				Position: nextPos[it.SetNumber],
			})
			nextPos[it.SetNumber]++
		}

		return s.items.UpdatePositions(txCtx, setlistID, assignments)
	})
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListBySetlist(ctx, setlistID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("setlist reordered", "setlist_id", setlistID, "items", len(req.ItemIDs))
	s.broadcaster.SetlistReordered(setlistID, items)

	return items, nil
}

// ListItems returns the ordered item list.
func (s *orderingService) ListItems(ctx context.Context, userID, setlistID string) ([]models.SetlistItem, error) {
	if _, err := s.forRead(ctx, userID, setlistID); err != nil {
		return nil, err
	}
	return s.items.ListBySetlist(ctx, setlistID)
}
