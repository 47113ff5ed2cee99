package store

import (
	"context"

	"github.com/bcgov/restoration-tracker/pkg/model"
)

// ParticipantsStore manages project participation
type ParticipantsStore interface {
	// GetParticipation returns the user's participation, or nil.
	GetParticipation(ctx context.Context, projectID, systemUserID int) (*model.Participant, error)

	ListParticipants(ctx context.Context, projectID int) ([]model.Participant, error)

	// AddParticipants registers unknown users and adds each participation.
	AddParticipants(ctx context.Context, projectID int, participants []model.NewParticipant, actorID int) error

	// UpdateParticipantRole returns ErrLastProjectLead when the change
	// demotes the last Project Lead.
	UpdateParticipantRole(ctx context.Context, projectID, participationID, roleID, actorID int) error

	// RemoveParticipant returns ErrLastProjectLead when removing the last
	// Project Lead.
	RemoveParticipant(ctx context.Context, projectID, participationID int) error
}
