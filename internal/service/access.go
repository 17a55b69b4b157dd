package service

import (
	"context"

	"bandstand/internal/domain/models"
	"bandstand/internal/domain/repositories"
	"bandstand/internal/domain/services"
)

// setlistAccess loads a setlist and applies the access decision. Every
// service embeds it so the NotFound/Forbidden behavior stays uniform.
type setlistAccess struct {
	setlists   repositories.SetlistRepository
	authorizer services.SetlistAuthorizer
}

func (a setlistAccess) forRead(ctx context.Context, userID, setlistID string) (*models.Setlist, error) {
	setlist, err := a.setlists.GetByID(ctx, setlistID)
	if err != nil {
		return nil, err
	}
	if err := a.authorizer.CanRead(ctx, userID, setlist); err != nil {
		return nil, err
	}
	return setlist, nil
}

func (a setlistAccess) forWrite(ctx context.Context, userID, setlistID string) (*models.Setlist, error) {
	setlist, err := a.setlists.GetByID(ctx, setlistID)
	if err != nil {
		return nil, err
	}
	if err := a.authorizer.CanWrite(ctx, userID, setlist); err != nil {
		return nil, err
	}
	return setlist, nil
}
