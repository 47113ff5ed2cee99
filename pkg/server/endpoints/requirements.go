package endpoints

import (
	"net/http"

	"github.com/bcgov/restoration-tracker/pkg/authz"
	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/server"
)

var (
	systemAdmin = authz.Static(authz.Requirement{
		Or: []authz.Rule{authz.SystemRole{ValidSystemRoles: []string{model.SystemRoleSystemAdmin}}},
	})

	projectCreator = authz.Static(authz.Requirement{
		Or: []authz.Rule{authz.SystemRole{ValidSystemRoles: []string{
			model.SystemRoleSystemAdmin, model.SystemRoleProjectCreator,
		}}},
	})

	activeUser = authz.Static(authz.Requirement{
		And: []authz.Rule{authz.SystemUser{}},
	})
)

// serviceClients returns one rule per configured service client id.
func serviceClients(clientIDs []string) []authz.Rule {
	rules := make([]authz.Rule, 0, len(clientIDs))
	for _, id := range clientIDs {
		if id != "" {
			rules = append(rules, authz.ServiceClient{ClientID: id})
		}
	}
	return rules
}

// projectRole admits the listed roles on the route's project, plus the
// system roles in admins and any extra rules.
func projectRole(admins []string, roles []string, extra ...authz.Rule) authz.RequirementFunc {
	return func(r *http.Request) (authz.Requirement, error) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			return authz.Requirement{}, err
		}
		or := []authz.Rule{
			authz.SystemRole{ValidSystemRoles: admins},
			authz.ProjectRole{ValidProjectRoles: roles, ProjectID: projectID},
		}
		return authz.Requirement{Or: append(or, extra...)}, nil
	}
}

var (
	// Data Administrators read and edit every project but hold no lead rights.
	allProjectsAdmins = []string{model.SystemRoleSystemAdmin, model.SystemRoleDataAdmin}

	anyProjectRole = projectRole(allProjectsAdmins, model.ProjectRoles)
	projectEditor  = projectRole(allProjectsAdmins, []string{model.ProjectRoleLead, model.ProjectRoleEditor})
	projectLead    = projectRole([]string{model.SystemRoleSystemAdmin}, []string{model.ProjectRoleLead})
)

// projectReader is anyProjectRole plus the configured service clients.
func projectReader(s *server.Server) authz.RequirementFunc {
	return projectRole(allProjectsAdmins, model.ProjectRoles, serviceClients(s.Config.KeycloakServiceClients)...)
}

// listReader admits any active system user or a configured service client.
func listReader(s *server.Server) authz.RequirementFunc {
	or := append([]authz.Rule{authz.SystemUser{}}, serviceClients(s.Config.KeycloakServiceClients)...)
	return authz.Static(authz.Requirement{Or: or})
}

// guard wraps h with the authorizer.
func guard(s *server.Server, reqFn authz.RequirementFunc, h http.HandlerFunc) http.Handler {
	return s.Authorizer.Middleware(reqFn)(h)
}

// unrestricted reports whether the caller sees every project. Service
// clients read every project.
func unrestricted(r *http.Request) bool {
	if authz.ServiceClientFrom(r.Context()) != "" {
		return true
	}
	return currentUser(r).HasRole(model.SystemRoleSystemAdmin, model.SystemRoleDataAdmin)
}
