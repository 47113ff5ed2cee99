package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/bcgov/restoration-tracker/pkg/apierror"
	"github.com/bcgov/restoration-tracker/pkg/audit"
	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/objectstore"
	"github.com/bcgov/restoration-tracker/pkg/queries"
	"github.com/bcgov/restoration-tracker/pkg/server"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
	"github.com/bcgov/restoration-tracker/pkg/spatial"
)

// RegisterProjectEndpoints registers project create, list, view, update,
// publish and delete.
func RegisterProjectEndpoints(s *server.Server) {
	projects := s.ProjectsStore
	projectRouter := s.API.PathPrefix("/project").Subrouter()

	projectRouter.Handle("/create", guard(s, projectCreator, handleCreateProject(projects))).Methods("POST")
	projectRouter.Handle("/list", guard(s, listReader(s), handleListProjects(projects, s.Config.APIListLimitMax))).Methods("GET")
	projectRouter.Handle("/{projectId}/view", guard(s, projectReader(s), handleViewProject(projects))).Methods("GET")
	projectRouter.Handle("/{projectId}/update", guard(s, projectEditor, handleGetProjectForUpdate(projects))).Methods("GET")
	projectRouter.Handle("/{projectId}/update", guard(s, projectEditor, handleUpdateProject(projects))).Methods("PUT")
	projectRouter.Handle("/{projectId}/publish", guard(s, projectLead, handlePublishProject(projects))).Methods("PUT")
	projectRouter.Handle("/{projectId}/delete", guard(s, projectLead, handleDeleteProject(projects, s.Objects))).Methods("DELETE")
}

func handleCreateProject(projects store.ProjectsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body model.PostProjectObject
		if err := decodeJSON(r, &body); err != nil {
			apierror.Write(w, err)
			return
		}
		if problems := spatial.ValidateBoundary(body.Location.Geometry); len(problems) > 0 {
			apierror.Write(w, apierror.BadRequest("Invalid project boundary", problems...))
			return
		}

		projectID, err := projects.CreateProject(r.Context(), body, currentUserID(r))
		audit.Log(audit.ProjectEvent{Actor: actorFrom(r), Outcome: outcome(err), ProjectID: projectID, Operation: "create"})
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		respondWithJSON(w, http.StatusOK, model.CreatedResponse{ID: projectID})
	}
}

// dateLayout is the ISO 8601 calendar date used by date filters.
const dateLayout = "2006-01-02"

// projectFilter reads the list filters from the query string.
func projectFilter(r *http.Request) (model.ProjectFilter, error) {
	q := r.URL.Query()
	filter := model.ProjectFilter{
		Keyword:       q.Get("keyword"),
		ContactAgency: q.Get("contact_agency"),
		PermitNumber:  q.Get("permit_number"),
		StartDate:     q.Get("start_date"),
		EndDate:       q.Get("end_date"),
	}

	for name, dst := range map[string]*int{"funding_agency": &filter.FundingAgency, "region": &filter.Region} {
		if v := q.Get(name); v != "" {
			i, err := strconv.Atoi(v)
			if err != nil {
				return filter, apierror.BadRequest("Invalid "+name, v)
			}
			*dst = i
		}
	}

	for name, v := range map[string]string{"start_date": filter.StartDate, "end_date": filter.EndDate} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, v); err != nil {
			return filter, apierror.BadRequest("Invalid "+name, fmt.Sprintf("%q is not a YYYY-MM-DD date", v))
		}
	}

	species, err := queryInts(r, "species")
	if err != nil {
		return filter, err
	}
	filter.Species = species
	return filter, nil
}

func handleListProjects(projects store.ProjectsStore, limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := projectFilter(r)
		if err != nil {
			apierror.Write(w, err)
			return
		}

		scope := queries.Scope{SystemUserID: currentUserID(r), Unrestricted: unrestricted(r)}

		list, err := projects.ListProjects(r.Context(), filter, scope, limit)
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		respondWithJSON(w, http.StatusOK, list)
	}
}

func handleViewProject(projects store.ProjectsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		view, err := projects.GetProjectView(r.Context(), projectID, false)
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		respondWithJSON(w, http.StatusOK, view)
	}
}

func handleGetProjectForUpdate(projects store.ProjectsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		entities := r.URL.Query()["entity"]
		for _, e := range entities {
			if !isProjectEntity(e) {
				apierror.Write(w, apierror.BadRequest("Invalid entity", e))
				return
			}
		}

		project, err := projects.GetProjectForUpdate(r.Context(), projectID, entities)
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		respondWithJSON(w, http.StatusOK, project)
	}
}

func isProjectEntity(name string) bool {
	for _, e := range model.ProjectEntities {
		if e == name {
			return true
		}
	}
	return false
}

func handleUpdateProject(projects store.ProjectsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		var body model.PutProjectObject
		if err := decodeJSON(r, &body); err != nil {
			apierror.Write(w, err)
			return
		}
		if body.Location != nil {
			if problems := spatial.ValidateBoundary(body.Location.Geometry); len(problems) > 0 {
				apierror.Write(w, apierror.BadRequest("Invalid project boundary", problems...))
				return
			}
		}

		err = projects.UpdateProject(r.Context(), projectID, body, currentUserID(r))
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				apierror.Write(w, apierror.Conflict("Project was modified by another user", "reload the project and try again"))
				return
			}
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func handlePublishProject(projects store.ProjectsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		var body model.PublishRequest
		if err := decodeJSON(r, &body); err != nil {
			apierror.Write(w, err)
			return
		}

		err = projects.PublishProject(r.Context(), projectID, body.Publish, currentUserID(r))
		operation := "publish"
		if !body.Publish {
			operation = "unpublish"
		}
		audit.Log(audit.ProjectEvent{Actor: actorFrom(r), Outcome: outcome(err), ProjectID: projectID, Operation: operation})
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		respondWithJSON(w, http.StatusOK, model.CreatedResponse{ID: projectID})
	}
}

func handleDeleteProject(projects store.ProjectsStore, objects objectstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		project, err := projects.GetProject(r.Context(), projectID)
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		if project.Published() && !currentUser(r).HasRole(model.SystemRoleSystemAdmin) {
			apierror.Write(w, apierror.Forbidden("Access Denied", "a published project can only be deleted by a System Administrator"))
			return
		}

		err = projects.DeleteProject(r.Context(), projectID)
		audit.Log(audit.ProjectEvent{Actor: actorFrom(r), Outcome: outcome(err), ProjectID: projectID, Operation: "delete"})
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}

		// The rows are gone; orphaned objects are only logged.
		if err := objects.DeletePrefix(r.Context(), objectstore.ProjectPrefix(projectID)); err != nil {
			zap.L().Warn("failed to delete project attachments",
				zap.Int("project_id", projectID),
				zap.Error(err),
			)
		}
		w.WriteHeader(http.StatusOK)
	}
}
