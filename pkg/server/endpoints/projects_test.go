package endpoints

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/objectstore"
	"github.com/bcgov/restoration-tracker/pkg/queries"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

const projectBody = `{
	"project": {"project_name": "Caribou Range", "objectives": "Restore *linear* features", "start_date": "2024-04-01"},
	"contact": {"contacts": [{"first_name": "Jane", "last_name": "Doe", "email_address": "jane@example.com", "agency": "FLNRO", "is_public": true, "is_primary": true}]},
	"location": {"geometry": {"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [-123.4, 49.2]}}
	]}}
}`

func TestCreateProject(t *testing.T) {
	t.Run("creates project", func(t *testing.T) {
		projects := &MockProjectsStore{}
		projects.On("CreateProject", mock.Anything, mock.MatchedBy(func(p model.PostProjectObject) bool {
			return p.Project.Name == "Caribou Range" && len(p.Location.Geometry.Features) == 1
		}), 8).Return(21, nil)

		w := httptest.NewRecorder()
		handleCreateProject(projects)(w, requestAs("POST", "/api/project/create", projectBody, creatorUser()))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":21}`, w.Body.String())
	})

	t.Run("boundary outside lon/lat range", func(t *testing.T) {
		projects := &MockProjectsStore{}
		body := strings.Replace(projectBody, "[-123.4, 49.2]", "[1200000, 480000]", 1)

		w := httptest.NewRecorder()
		handleCreateProject(projects)(w, requestAs("POST", "/api/project/create", body, creatorUser()))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Len(t, decodeError(t, w).Errors, 1)
		projects.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		projects := &MockProjectsStore{}

		w := httptest.NewRecorder()
		handleCreateProject(projects)(w, requestAs("POST", "/api/project/create", `{"project":`, creatorUser()))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListProjects(t *testing.T) {
	t.Run("participant sees own projects", func(t *testing.T) {
		projects := &MockProjectsStore{}
		filter := model.ProjectFilter{Keyword: "caribou", FundingAgency: 3, Species: []int{1, 2}}
		scope := queries.Scope{SystemUserID: 7}
		projects.On("ListProjects", mock.Anything, filter, scope, 50).
			Return([]model.ProjectListItem{{ID: 1, Name: "Caribou Range"}}, nil)

		w := httptest.NewRecorder()
		handleListProjects(projects, 50)(w, requestAs("GET", "/api/project/list?keyword=caribou&funding_agency=3&species=1&species=2", "", plainUser()))

		assert.Equal(t, http.StatusOK, w.Code)
		projects.AssertExpectations(t)
	})

	t.Run("administrator is unrestricted", func(t *testing.T) {
		projects := &MockProjectsStore{}
		projects.On("ListProjects", mock.Anything, model.ProjectFilter{Species: []int{}}, queries.Scope{SystemUserID: 1, Unrestricted: true}, 50).
			Return([]model.ProjectListItem{}, nil)

		w := httptest.NewRecorder()
		handleListProjects(projects, 50)(w, requestAs("GET", "/api/project/list", "", adminUser()))

		assert.Equal(t, http.StatusOK, w.Code)
		projects.AssertExpectations(t)
	})

	t.Run("non-numeric region", func(t *testing.T) {
		projects := &MockProjectsStore{}

		w := httptest.NewRecorder()
		handleListProjects(projects, 50)(w, requestAs("GET", "/api/project/list?region=north", "", plainUser()))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed dates", func(t *testing.T) {
		for _, q := range []string{"start_date=2024-13-01", "end_date=yesterday", "start_date=01/04/2024"} {
			projects := &MockProjectsStore{}

			w := httptest.NewRecorder()
			handleListProjects(projects, 50)(w, requestAs("GET", "/api/project/list?"+q, "", plainUser()))

			assert.Equal(t, http.StatusBadRequest, w.Code, q)
			projects.AssertNotCalled(t, "ListProjects", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		}
	})
}

func TestViewProject(t *testing.T) {
	projects := &MockProjectsStore{}
	projects.On("GetProjectView", mock.Anything, 4, false).Return(nil, store.ErrNotFound)

	req := withMuxVars(requestAs("GET", "/api/project/4/view", "", plainUser()), map[string]string{"projectId": "4"})
	w := httptest.NewRecorder()
	handleViewProject(projects)(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProjectForUpdate(t *testing.T) {
	t.Run("selected entities", func(t *testing.T) {
		projects := &MockProjectsStore{}
		projects.On("GetProjectForUpdate", mock.Anything, 4, []string{model.EntityProject, model.EntityLocation}).
			Return(&model.ProjectForUpdate{RevisionCount: 2, Project: &model.ProjectSection{Name: "Caribou Range"}}, nil)

		req := withMuxVars(requestAs("GET", "/api/project/4/update?entity=project&entity=location", "", plainUser()), map[string]string{"projectId": "4"})
		w := httptest.NewRecorder()
		handleGetProjectForUpdate(projects)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var got model.ProjectForUpdate
		decodeBody(t, w, &got)
		assert.Equal(t, 2, got.RevisionCount)
		assert.Nil(t, got.Contact)
	})

	t.Run("unknown entity", func(t *testing.T) {
		projects := &MockProjectsStore{}

		req := withMuxVars(requestAs("GET", "/api/project/4/update?entity=budget", "", plainUser()), map[string]string{"projectId": "4"})
		w := httptest.NewRecorder()
		handleGetProjectForUpdate(projects)(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateProject(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		projects := &MockProjectsStore{}
		projects.On("UpdateProject", mock.Anything, 4, mock.MatchedBy(func(p model.PutProjectObject) bool {
			return p.RevisionCount == 2 && p.Project != nil && p.Contact == nil
		}), 7).Return(nil)

		body := `{"revision_count":2,"project":{"project_name":"Caribou Range II","objectives":"x","start_date":"2024-04-01"}}`
		req := withMuxVars(requestAs("PUT", "/api/project/4/update", body, plainUser()), map[string]string{"projectId": "4"})
		w := httptest.NewRecorder()
		handleUpdateProject(projects)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		projects.AssertExpectations(t)
	})

	t.Run("stale revision", func(t *testing.T) {
		projects := &MockProjectsStore{}
		projects.On("UpdateProject", mock.Anything, 4, mock.Anything, 7).Return(store.ErrConflict)

		req := withMuxVars(requestAs("PUT", "/api/project/4/update", `{"revision_count":1}`, plainUser()), map[string]string{"projectId": "4"})
		w := httptest.NewRecorder()
		handleUpdateProject(projects)(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestPublishProject(t *testing.T) {
	projects := &MockProjectsStore{}
	projects.On("PublishProject", mock.Anything, 4, true, 7).Return(nil)

	req := withMuxVars(requestAs("PUT", "/api/project/4/publish", `{"publish":true}`, plainUser()), map[string]string{"projectId": "4"})
	w := httptest.NewRecorder()
	handlePublishProject(projects)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":4}`, w.Body.String())
}

func TestDeleteProject(t *testing.T) {
	published := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("lead deletes unpublished project and its objects", func(t *testing.T) {
		s, ts := newTestServer(t)
		key := objectstore.AttachmentKey(4, "uuid-1", "report.pdf")
		_, err := s.Objects.Put(context.Background(), key, strings.NewReader("pdf"))
		require.NoError(t, err)

		ts.projects.On("GetProject", mock.Anything, 4).Return(&model.ProjectRecord{ID: 4}, nil)
		ts.projects.On("DeleteProject", mock.Anything, 4).Return(nil)

		req := withMuxVars(requestAs("DELETE", "/api/project/4/delete", "", plainUser()), map[string]string{"projectId": "4"})
		w := httptest.NewRecorder()
		handleDeleteProject(s.ProjectsStore, s.Objects)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		_, err = s.Objects.Open(context.Background(), key)
		assert.ErrorIs(t, err, objectstore.ErrNotFound)
	})

	t.Run("published project needs a system administrator", func(t *testing.T) {
		s, ts := newTestServer(t)
		ts.projects.On("GetProject", mock.Anything, 4).Return(&model.ProjectRecord{ID: 4, PublishTimestamp: &published}, nil)

		req := withMuxVars(requestAs("DELETE", "/api/project/4/delete", "", plainUser()), map[string]string{"projectId": "4"})
		w := httptest.NewRecorder()
		handleDeleteProject(s.ProjectsStore, s.Objects)(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		ts.projects.AssertNotCalled(t, "DeleteProject", mock.Anything, mock.Anything)
	})

	t.Run("system administrator deletes published project", func(t *testing.T) {
		s, ts := newTestServer(t)
		ts.projects.On("GetProject", mock.Anything, 4).Return(&model.ProjectRecord{ID: 4, PublishTimestamp: &published}, nil)
		ts.projects.On("DeleteProject", mock.Anything, 4).Return(nil)

		req := withMuxVars(requestAs("DELETE", "/api/project/4/delete", "", adminUser()), map[string]string{"projectId": "4"})
		w := httptest.NewRecorder()
		handleDeleteProject(s.ProjectsStore, s.Objects)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
