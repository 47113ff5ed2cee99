package store

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write lost a race, e.g. a stale
	// revision_count or a duplicate pending request
	ErrConflict = errors.New("conflict")

	// ErrLastProjectLead is returned when a change would leave a project
	// without a Project Lead
	ErrLastProjectLead = errors.New("a project must have at least one Project Lead")

	// ErrSoleProjectLead is returned when removing a user who is the only
	// Project Lead of a project
	ErrSoleProjectLead = errors.New("user is the only Project Lead of a project")

	// ErrUnknownIdentitySource is returned when a user names an identity
	// source that is not an active code
	ErrUnknownIdentitySource = errors.New("unknown identity source")
)
