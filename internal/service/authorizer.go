package service

import (
	"context"
	"fmt"

	"bandstand/internal/domain"
	"bandstand/internal/domain/models"
	"bandstand/internal/domain/repositories"
	"bandstand/internal/domain/services"
)

// BandAwareAuthorizer grants access based on creatorship, band
// membership and the public flag. It is the only place that consults
// the membership table.
type BandAwareAuthorizer struct {
	members repositories.MembershipRepository
}

// NewBandAwareAuthorizer creates a new authorizer.
func NewBandAwareAuthorizer(members repositories.MembershipRepository) services.SetlistAuthorizer {
	return &BandAwareAuthorizer{members: members}
}

// CanRead allows the creator, band members, and anyone for public
// setlists.
func (a *BandAwareAuthorizer) CanRead(ctx context.Context, userID string, setlist *models.Setlist) error {
	if setlist.IsPublic || setlist.CreatedBy == userID {
		return nil
	}
	return a.checkMembership(ctx, userID, setlist)
}

// CanWrite allows the creator and band members; the public flag grants
// read access only.
func (a *BandAwareAuthorizer) CanWrite(ctx context.Context, userID string, setlist *models.Setlist) error {
	if setlist.CreatedBy == userID {
		return nil
	}
	return a.checkMembership(ctx, userID, setlist)
}

func (a *BandAwareAuthorizer) checkMembership(ctx context.Context, userID string, setlist *models.Setlist) error {
	if setlist.BandID == nil {
		return &domain.ForbiddenError{Message: "no access to this setlist"}
	}
	member, err := a.members.IsMember(ctx, *setlist.BandID, userID)
	if err != nil {
		return fmt.Errorf("check band membership: %w", err)
	}
	if !member {
		return &domain.ForbiddenError{Message: "no access to this setlist"}
	}
	return nil
}
