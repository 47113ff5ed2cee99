package authz

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bcgov/restoration-tracker/pkg/apierror"
	"github.com/bcgov/restoration-tracker/pkg/identity"
	"github.com/bcgov/restoration-tracker/pkg/model"
)

// Store loads the records rules are evaluated against
type Store interface {
	// GetSystemUserByIdentity returns the system user for an identity, or nil
	// when the caller is not registered.
	GetSystemUserByIdentity(ctx context.Context, id *identity.Identity) (*model.SystemUser, error)

	// GetParticipation returns the user's participation on a project, or nil.
	GetParticipation(ctx context.Context, projectID, systemUserID int) (*model.Participant, error)
}

type contextKey string

const subjectKey contextKey = "authz-subject"

// SubjectFrom returns the subject cached on the context by the Authorizer.
func SubjectFrom(ctx context.Context) (*Subject, bool) {
	s, ok := ctx.Value(subjectKey).(*Subject)
	return s, ok
}

// WithSubject caches a subject on the context.
func WithSubject(ctx context.Context, s *Subject) context.Context {
	return context.WithValue(ctx, subjectKey, s)
}

// SystemUserFrom returns the caller's system user loaded during
// authorization, or nil.
func SystemUserFrom(ctx context.Context) *model.SystemUser {
	if s, ok := SubjectFrom(ctx); ok {
		return s.User
	}
	return nil
}

// ServiceClientFrom returns the client id when the request was admitted as
// a service client, or "".
func ServiceClientFrom(ctx context.Context) string {
	if s, ok := SubjectFrom(ctx); ok {
		return s.ServiceClient
	}
	return ""
}

// Authorizer loads subjects and applies requirements.
type Authorizer struct {
	store Store
}

func NewAuthorizer(store Store) *Authorizer {
	return &Authorizer{store: store}
}

// Subject returns the caller's subject, loading the system user on first
// use and caching it on the returned context.
func (a *Authorizer) Subject(ctx context.Context) (context.Context, *Subject, error) {
	if s, ok := SubjectFrom(ctx); ok {
		return ctx, s, nil
	}

	id, ok := identity.Get(ctx)
	if !ok || id == nil {
		return ctx, nil, ErrUnauthenticated
	}

	user, err := a.store.GetSystemUserByIdentity(ctx, id)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to load system user: %w", err)
	}

	s := &Subject{Identity: id, User: user}
	return WithSubject(ctx, s), s, nil
}

// Authorize checks req for the caller and returns a context carrying the
// loaded subject.
func (a *Authorizer) Authorize(ctx context.Context, req Requirement) (context.Context, error) {
	id, ok := identity.Get(ctx)
	if !ok || id == nil {
		return ctx, ErrUnauthenticated
	}

	// Service clients have no system user to load.
	caller := &Subject{Identity: id}
	for _, rule := range req.rules() {
		if sc, ok := rule.(ServiceClient); ok && sc.Satisfied(caller) {
			caller.ServiceClient = sc.ClientID
			return WithSubject(ctx, caller), nil
		}
	}

	ctx, s, err := a.Subject(ctx)
	if err != nil {
		return ctx, err
	}

	if s.User.Active() {
		for _, projectID := range req.projectIDs() {
			if s.hasParticipation(projectID) {
				continue
			}
			p, err := a.store.GetParticipation(ctx, projectID, s.User.ID)
			if err != nil {
				return ctx, fmt.Errorf("failed to load project participation: %w", err)
			}
			s.SetParticipation(projectID, p)
		}
	}

	return ctx, Evaluate(req, s)
}

// RequirementFunc builds the requirement for a request, typically from its
// route variables.
type RequirementFunc func(r *http.Request) (Requirement, error)

// Static returns a RequirementFunc that ignores the request.
func Static(req Requirement) RequirementFunc {
	return func(*http.Request) (Requirement, error) {
		return req, nil
	}
}

// Middleware guards a handler with the requirement built by reqFn.
func (a *Authorizer) Middleware(reqFn RequirementFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req, err := reqFn(r)
			if err != nil {
				apierror.Write(w, err)
				return
			}

			ctx, err := a.Authorize(r.Context(), req)
			if err != nil {
				apierror.Write(w, ToAPIError(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ToAPIError maps authorization errors to HTTP errors.
func ToAPIError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnauthenticated):
		return apierror.Unauthorized("Access Denied", err.Error())
	case errors.Is(err, ErrForbidden):
		return apierror.Forbidden("Access Denied", err.Error())
	}
	return apierror.Internal("Failed to authorize request", err)
}
