package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/queries"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

// Ensure ParticipantsStore implements store.ParticipantsStore
var _ store.ParticipantsStore = (*ParticipantsStore)(nil)

const participantSelect = `SELECT
  pp.project_participation_id,
  pp.project_id,
  pp.system_user_id,
  pp.project_role_id,
  pr.name AS project_role_name,
  su.user_identifier,
  uis.name AS identity_source
FROM project_participation pp
JOIN project_role pr ON pr.project_role_id = pp.project_role_id
JOIN system_user su ON su.system_user_id = pp.system_user_id
JOIN user_identity_source uis ON uis.user_identity_source_id = su.user_identity_source_id`

// ParticipantsStore implements store.ParticipantsStore using GORM
type ParticipantsStore struct {
	db *gorm.DB
}

// NewParticipantsStore creates a new ParticipantsStore
func NewParticipantsStore(db *gorm.DB) *ParticipantsStore {
	return &ParticipantsStore{db: db}
}

func (s *ParticipantsStore) GetParticipation(ctx context.Context, projectID, systemUserID int) (*model.Participant, error) {
	return findParticipant(s.db.WithContext(ctx), "pp.project_id = ? AND pp.system_user_id = ?", projectID, systemUserID)
}

func (s *ParticipantsStore) ListParticipants(ctx context.Context, projectID int) ([]model.Participant, error) {
	participants := []model.Participant{}
	err := s.db.WithContext(ctx).Raw(participantSelect+`
WHERE pp.project_id = ?
ORDER BY pp.project_participation_id`, projectID).Scan(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

// AddParticipants fails with store.ErrConflict when a user already
// participates in the project.
func (s *ParticipantsStore) AddParticipants(ctx context.Context, projectID int, participants []model.NewParticipant, actorID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProject(tx, projectID); err != nil {
			return err
		}
		for _, p := range participants {
			systemUserID, err := ensureSystemUser(tx, p.UserIdentifier, p.IdentitySource, p.UserGUID, "", "", actorID)
			if err != nil {
				return err
			}

			existing, err := findParticipant(tx, "pp.project_id = ? AND pp.system_user_id = ?", projectID, systemUserID)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("%w: %s is already a participant", store.ErrConflict, p.UserIdentifier)
			}

			stmt, err := queries.InsertParticipation(projectID, systemUserID, p.RoleID, actorID)
			if err != nil {
				return err
			}
			var id int
			if _, err := scan(tx, stmt, &id); err != nil {
				return fmt.Errorf("failed to add participant: %w", err)
			}
		}
		return nil
	})
}

func (s *ParticipantsStore) UpdateParticipantRole(ctx context.Context, projectID, participationID, roleID, actorID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProject(tx, projectID); err != nil {
			return err
		}
		stmt, err := queries.UpdateParticipationRole(projectID, participationID, roleID, actorID)
		if err != nil {
			return err
		}
		n, err := exec(tx, stmt)
		if err != nil {
			return fmt.Errorf("failed to update participant: %w", err)
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return requireProjectLead(tx, projectID)
	})
}

func (s *ParticipantsStore) RemoveParticipant(ctx context.Context, projectID, participationID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProject(tx, projectID); err != nil {
			return err
		}
		stmt, err := queries.DeleteParticipation(projectID, participationID)
		if err != nil {
			return err
		}
		n, err := exec(tx, stmt)
		if err != nil {
			return fmt.Errorf("failed to remove participant: %w", err)
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return requireProjectLead(tx, projectID)
	})
}

// requireProjectLead fails when the project has no Project Lead left, which
// rolls back the change that removed it.
func requireProjectLead(tx *gorm.DB, projectID int) error {
	stmt, err := queries.CountProjectLeads(projectID)
	if err != nil {
		return err
	}
	var leads int
	if _, err := scan(tx, stmt, &leads); err != nil {
		return fmt.Errorf("failed to count project leads: %w", err)
	}
	if leads == 0 {
		return store.ErrLastProjectLead
	}
	return nil
}

func findParticipant(db *gorm.DB, where string, args ...interface{}) (*model.Participant, error) {
	var p model.Participant
	res := db.Raw(participantSelect+"\nWHERE "+where, args...).Scan(&p)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to fetch participant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &p, nil
}
