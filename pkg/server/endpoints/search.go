package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/bcgov/restoration-tracker/pkg/apierror"
	"github.com/bcgov/restoration-tracker/pkg/queries"
	"github.com/bcgov/restoration-tracker/pkg/server"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
	"github.com/bcgov/restoration-tracker/pkg/spatial"
)

// RegisterSearchEndpoints registers the spatial search and the public,
// unauthenticated views of published projects.
func RegisterSearchEndpoints(s *server.Server) {
	projects := s.ProjectsStore
	limit := s.Config.APIListLimitMax

	s.API.Handle("/search", guard(s, listReader(s), handleSearch(projects, limit, false))).Methods("GET")

	public := s.API.PathPrefix("/public").Subrouter()
	public.HandleFunc("/search", handleSearch(projects, limit, true)).Methods("GET")
	public.HandleFunc("/project/list", handleListPublicProjects(projects, limit)).Methods("GET")
	public.HandleFunc("/project/{projectId}/view", handleViewPublicProject(projects)).Methods("GET")
}

type searchResponse struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Geometry json.RawMessage `json:"geometry"`
}

func handleSearch(projects store.ProjectsStore, limit int, public bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bbox, err := spatial.ParseBoundingBox(r.URL.Query().Get("bbox"))
		if err != nil {
			apierror.Write(w, apierror.BadRequest("Invalid bbox", err.Error()))
			return
		}

		scope := queries.Scope{PublishedOnly: public}
		if !public {
			scope.SystemUserID = currentUserID(r)
			scope.Unrestricted = unrestricted(r)
		}

		results, err := projects.SpatialSearch(r.Context(), scope, bbox, limit)
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}

		out := make([]searchResponse, 0, len(results))
		for _, res := range results {
			geometry := json.RawMessage("null")
			if len(res.Geometry) > 0 {
				geometry = json.RawMessage(res.Geometry)
			}
			out = append(out, searchResponse{ID: res.ID, Name: res.Name, Geometry: geometry})
		}
		respondWithJSON(w, http.StatusOK, out)
	}
}

func handleListPublicProjects(projects store.ProjectsStore, limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := projectFilter(r)
		if err != nil {
			apierror.Write(w, err)
			return
		}

		list, err := projects.ListProjects(r.Context(), filter, queries.Scope{PublishedOnly: true}, limit)
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		respondWithJSON(w, http.StatusOK, list)
	}
}

// handleViewPublicProject hides unpublished projects behind a 404.
func handleViewPublicProject(projects store.ProjectsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		view, err := projects.GetProjectView(r.Context(), projectID, true)
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		if view.Project.PublishDate == nil {
			apierror.Write(w, apierror.NotFound("Project not found"))
			return
		}

		view.Project.ObjectivesHTML = renderMarkdown(view.Project.Objectives)
		respondWithJSON(w, http.StatusOK, view)
	}
}

// renderMarkdown converts objectives to HTML. Raw HTML in the source is
// omitted.
func renderMarkdown(src string) string {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		zap.L().Warn("failed to render objectives", zap.Error(err))
		return ""
	}
	return buf.String()
}
