package store

import (
	"context"

	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/queries"
)

// ProjectsStore manages projects and their child sections
type ProjectsStore interface {
	// CreateProject inserts the project and every section in one
	// transaction and makes the creator its Project Lead.
	CreateProject(ctx context.Context, p model.PostProjectObject, creatorID int) (int, error)

	// GetProject returns ErrNotFound for unknown ids.
	GetProject(ctx context.Context, projectID int) (*model.ProjectRecord, error)

	// GetProjectView assembles every section. publicOnly limits contacts
	// to public ones.
	GetProjectView(ctx context.Context, projectID int, publicOnly bool) (*model.ProjectView, error)

	GetProjectForUpdate(ctx context.Context, projectID int, entities []string) (*model.ProjectForUpdate, error)

	// UpdateProject replaces the sections present. Returns ErrConflict when
	// RevisionCount is stale.
	UpdateProject(ctx context.Context, projectID int, p model.PutProjectObject, actorID int) error

	PublishProject(ctx context.Context, projectID int, publish bool, actorID int) error

	DeleteProject(ctx context.Context, projectID int) error

	ListProjects(ctx context.Context, filter model.ProjectFilter, scope queries.Scope, limit int) ([]model.ProjectListItem, error)

	SpatialSearch(ctx context.Context, scope queries.Scope, bbox *model.BoundingBox, limit int) ([]model.SearchResult, error)
}
