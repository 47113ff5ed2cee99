// Package authz decides whether the caller of a request may perform it.
//
// A Requirement combines rules in an And group and an Or group. Rules look
// at the caller's system roles, project roles, system user record and
// Keycloak client:
//
//	authz.Requirement{
//	    Or: []authz.Rule{
//	        authz.SystemRole{ValidSystemRoles: []string{model.SystemRoleProjectCreator}},
//	        authz.ProjectRole{ValidProjectRoles: []string{model.ProjectRoleLead}, ProjectID: id},
//	    },
//	}
//
// Decision procedure:
//
//  1. No authenticated identity: unauthenticated.
//  2. A ServiceClient rule matching the token's client: allowed.
//  3. Unknown or end-dated system user: forbidden.
//  4. System Administrator: allowed.
//  5. The Or group needs one satisfied rule and the And group needs all of
//     them. Both groups apply when both are present; an empty requirement
//     admits any active system user.
package authz

import (
	"errors"

	"github.com/bcgov/restoration-tracker/pkg/identity"
	"github.com/bcgov/restoration-tracker/pkg/model"
)

var (
	// ErrUnauthenticated is returned when the request has no verified identity
	ErrUnauthenticated = errors.New("access token is missing or invalid")

	// ErrForbidden is returned when the caller does not meet the requirement
	ErrForbidden = errors.New("access denied")
)

// Rule is one condition of a Requirement.
type Rule interface {
	Satisfied(s *Subject) bool
}

// SystemRole holds when the user has any of the listed system roles.
type SystemRole struct {
	ValidSystemRoles []string
}

func (r SystemRole) Satisfied(s *Subject) bool {
	return s.User.HasRole(r.ValidSystemRoles...)
}

// ProjectRole holds when the user's role on the project is one of the listed roles.
type ProjectRole struct {
	ValidProjectRoles []string
	ProjectID         int
}

func (r ProjectRole) Satisfied(s *Subject) bool {
	role := s.ProjectRole(r.ProjectID)
	if role == "" {
		return false
	}
	for _, valid := range r.ValidProjectRoles {
		if role == valid {
			return true
		}
	}
	return false
}

// SystemUser holds for any registered, active system user.
type SystemUser struct{}

func (SystemUser) Satisfied(s *Subject) bool {
	return s.User.Active()
}

// ServiceClient holds when the token was issued to the given Keycloak client.
type ServiceClient struct {
	ClientID string
}

func (r ServiceClient) Satisfied(s *Subject) bool {
	return r.ClientID != "" && s.Identity != nil && s.Identity.ClientID == r.ClientID
}

// Requirement groups rules.
type Requirement struct {
	And []Rule
	Or  []Rule
}

// rules returns every rule of both groups.
func (req Requirement) rules() []Rule {
	all := make([]Rule, 0, len(req.And)+len(req.Or))
	all = append(all, req.And...)
	return append(all, req.Or...)
}

// projectIDs lists the projects referenced by ProjectRole rules.
func (req Requirement) projectIDs() []int {
	var ids []int
	for _, rule := range req.rules() {
		if pr, ok := rule.(ProjectRole); ok && pr.ProjectID != 0 {
			ids = append(ids, pr.ProjectID)
		}
	}
	return ids
}

// Subject is everything known about the caller that rules look at.
type Subject struct {
	Identity *identity.Identity
	// User is nil when the caller is not a registered system user.
	User *model.SystemUser
	// ServiceClient is set when a ServiceClient rule admitted the caller.
	ServiceClient string

	participations map[int]*model.Participant
}

// ProjectRole returns the caller's role name on a loaded project, or "".
func (s *Subject) ProjectRole(projectID int) string {
	if p := s.Participation(projectID); p != nil {
		return p.RoleName
	}
	return ""
}

// Participation returns the caller's participation on a loaded project.
func (s *Subject) Participation(projectID int) *model.Participant {
	if s == nil || s.participations == nil {
		return nil
	}
	return s.participations[projectID]
}

// SetParticipation records the caller's participation on a project; p may
// be nil to record that the caller has none.
func (s *Subject) SetParticipation(projectID int, p *model.Participant) {
	if s.participations == nil {
		s.participations = make(map[int]*model.Participant)
	}
	s.participations[projectID] = p
}

func (s *Subject) hasParticipation(projectID int) bool {
	_, ok := s.participations[projectID]
	return ok
}

// Evaluate applies the decision procedure to an already loaded subject.
func Evaluate(req Requirement, s *Subject) error {
	if s == nil || s.Identity == nil {
		return ErrUnauthenticated
	}

	for _, rule := range req.rules() {
		if sc, ok := rule.(ServiceClient); ok && sc.Satisfied(s) {
			return nil
		}
	}

	if !s.User.Active() {
		return ErrForbidden
	}

	if s.User.HasRole(model.SystemRoleSystemAdmin) {
		return nil
	}

	if len(req.Or) > 0 && !anySatisfied(req.Or, s) {
		return ErrForbidden
	}
	if len(req.And) > 0 && !allSatisfied(req.And, s) {
		return ErrForbidden
	}
	return nil
}

func anySatisfied(rules []Rule, s *Subject) bool {
	for _, rule := range rules {
		if rule.Satisfied(s) {
			return true
		}
	}
	return false
}

func allSatisfied(rules []Rule, s *Subject) bool {
	for _, rule := range rules {
		if !rule.Satisfied(s) {
			return false
		}
	}
	return true
}
