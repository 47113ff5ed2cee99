package endpoints

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bcgov/restoration-tracker/pkg/authz"
	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

func TestListParticipants(t *testing.T) {
	participants := &MockParticipantsStore{}
	participants.On("ListParticipants", mock.Anything, 4).Return([]model.Participant{
		{ID: 1, ProjectID: 4, SystemUserID: 7, RoleName: model.ProjectRoleLead},
	}, nil)

	req := withMuxVars(requestAs("GET", "/api/project/4/participants", "", plainUser()), map[string]string{"projectId": "4"})
	w := httptest.NewRecorder()
	handleListParticipants(participants)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var list []model.Participant
	decodeBody(t, w, &list)
	assert.Len(t, list, 1)
}

func TestGetSelfParticipation(t *testing.T) {
	t.Run("participant", func(t *testing.T) {
		req := withMuxVars(requestAs("GET", "/api/project/4/participants/self", "", plainUser()), map[string]string{"projectId": "4"})
		subject, _ := authz.SubjectFrom(req.Context())
		subject.SetParticipation(4, &model.Participant{ID: 9, ProjectID: 4, SystemUserID: 7, RoleName: model.ProjectRoleEditor})

		w := httptest.NewRecorder()
		handleGetSelfParticipation()(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var p model.Participant
		decodeBody(t, w, &p)
		assert.Equal(t, model.ProjectRoleEditor, p.RoleName)
	})

	t.Run("administrator without participation", func(t *testing.T) {
		req := withMuxVars(requestAs("GET", "/api/project/4/participants/self", "", adminUser()), map[string]string{"projectId": "4"})

		w := httptest.NewRecorder()
		handleGetSelfParticipation()(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "null", w.Body.String())
	})
}

func TestAddParticipants(t *testing.T) {
	t.Run("added", func(t *testing.T) {
		participants := &MockParticipantsStore{}
		want := []model.NewParticipant{{UserIdentifier: "jsmith", IdentitySource: "IDIR", RoleID: 2}}
		participants.On("AddParticipants", mock.Anything, 4, want, 7).Return(nil)

		body := `{"participants":[{"userIdentifier":"jsmith","identitySource":"IDIR","roleId":2}]}`
		req := withMuxVars(requestAs("POST", "/api/project/4/participants/create", body, plainUser()), map[string]string{"projectId": "4"})
		w := httptest.NewRecorder()
		handleAddParticipants(participants)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		participants.AssertExpectations(t)
	})

	t.Run("already a participant", func(t *testing.T) {
		participants := &MockParticipantsStore{}
		participants.On("AddParticipants", mock.Anything, 4, mock.Anything, 7).Return(store.ErrConflict)

		body := `{"participants":[{"userIdentifier":"jsmith","identitySource":"IDIR","roleId":2}]}`
		req := withMuxVars(requestAs("POST", "/api/project/4/participants/create", body, plainUser()), map[string]string{"projectId": "4"})
		w := httptest.NewRecorder()
		handleAddParticipants(participants)(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("empty list", func(t *testing.T) {
		participants := &MockParticipantsStore{}

		req := withMuxVars(requestAs("POST", "/api/project/4/participants/create", `{"participants":[]}`, plainUser()), map[string]string{"projectId": "4"})
		w := httptest.NewRecorder()
		handleAddParticipants(participants)(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateParticipantRole(t *testing.T) {
	t.Run("demoting the last lead", func(t *testing.T) {
		participants := &MockParticipantsStore{}
		participants.On("UpdateParticipantRole", mock.Anything, 4, 9, 3, 7).Return(store.ErrLastProjectLead)

		req := withMuxVars(requestAs("PUT", "/api/project/4/participants/9/update", `{"roleId":3}`, plainUser()),
			map[string]string{"projectId": "4", "participationId": "9"})
		w := httptest.NewRecorder()
		handleUpdateParticipantRole(participants)(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, store.ErrLastProjectLead.Error(), decodeError(t, w).Message)
	})

	t.Run("changed", func(t *testing.T) {
		participants := &MockParticipantsStore{}
		participants.On("UpdateParticipantRole", mock.Anything, 4, 9, 2, 7).Return(nil)

		req := withMuxVars(requestAs("PUT", "/api/project/4/participants/9/update", `{"roleId":2}`, plainUser()),
			map[string]string{"projectId": "4", "participationId": "9"})
		w := httptest.NewRecorder()
		handleUpdateParticipantRole(participants)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRemoveParticipant(t *testing.T) {
	t.Run("removed", func(t *testing.T) {
		participants := &MockParticipantsStore{}
		participants.On("RemoveParticipant", mock.Anything, 4, 9).Return(nil)

		req := withMuxVars(requestAs("DELETE", "/api/project/4/participants/9/delete", "", plainUser()),
			map[string]string{"projectId": "4", "participationId": "9"})
		w := httptest.NewRecorder()
		handleRemoveParticipant(participants)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("last lead", func(t *testing.T) {
		participants := &MockParticipantsStore{}
		participants.On("RemoveParticipant", mock.Anything, 4, 9).Return(store.ErrLastProjectLead)

		req := withMuxVars(requestAs("DELETE", "/api/project/4/participants/9/delete", "", plainUser()),
			map[string]string{"projectId": "4", "participationId": "9"})
		w := httptest.NewRecorder()
		handleRemoveParticipant(participants)(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown participation", func(t *testing.T) {
		participants := &MockParticipantsStore{}
		participants.On("RemoveParticipant", mock.Anything, 4, 99).Return(store.ErrNotFound)

		req := withMuxVars(requestAs("DELETE", "/api/project/4/participants/99/delete", "", plainUser()),
			map[string]string{"projectId": "4", "participationId": "99"})
		w := httptest.NewRecorder()
		handleRemoveParticipant(participants)(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
