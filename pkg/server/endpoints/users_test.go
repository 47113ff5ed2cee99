package endpoints

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

func TestGetSelf(t *testing.T) {
	t.Run("registered", func(t *testing.T) {
		w := httptest.NewRecorder()
		handleGetSelf()(w, requestAs("GET", "/api/user/self", "", plainUser()))

		assert.Equal(t, http.StatusOK, w.Code)
		var user model.SystemUser
		decodeBody(t, w, &user)
		assert.Equal(t, "jdoe", user.Identifier)
	})

	t.Run("unregistered", func(t *testing.T) {
		w := httptest.NewRecorder()
		handleGetSelf()(w, requestAs("GET", "/api/user/self", "", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAddUser(t *testing.T) {
	t.Run("adds user with role", func(t *testing.T) {
		users := &MockUsersStore{}
		newUser := model.NewUser{IdentitySource: "IDIR", UserIdentifier: "jsmith", RoleID: 2}
		users.On("AddSystemUser", mock.Anything, newUser, 1).Return(&model.SystemUser{ID: 12, Identifier: "jsmith"}, nil)

		w := httptest.NewRecorder()
		handleAddUser(users)(w, requestAs("POST", "/api/user", `{"identitySource":"IDIR","userIdentifier":"jsmith","roleId":2}`, adminUser()))

		assert.Equal(t, http.StatusOK, w.Code)
		users.AssertExpectations(t)
	})

	t.Run("missing identity source", func(t *testing.T) {
		users := &MockUsersStore{}

		w := httptest.NewRecorder()
		handleAddUser(users)(w, requestAs("POST", "/api/user", `{"userIdentifier":"jsmith"}`, adminUser()))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetUser(t *testing.T) {
	users := &MockUsersStore{}
	users.On("GetSystemUser", mock.Anything, 404).Return(nil, store.ErrNotFound)

	req := withMuxVars(requestAs("GET", "/api/user/404/get", "", adminUser()), map[string]string{"userId": "404"})
	w := httptest.NewRecorder()
	handleGetUser(users)(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "System user not found", decodeError(t, w).Message)
}

func TestRemoveUser(t *testing.T) {
	t.Run("removed", func(t *testing.T) {
		users := &MockUsersStore{}
		users.On("RemoveSystemUser", mock.Anything, 7, 1).Return(nil)

		req := withMuxVars(requestAs("DELETE", "/api/user/7/delete", "", adminUser()), map[string]string{"userId": "7"})
		w := httptest.NewRecorder()
		handleRemoveUser(users)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("sole project lead names the projects", func(t *testing.T) {
		users := &MockUsersStore{}
		users.On("RemoveSystemUser", mock.Anything, 7, 1).Return(store.ErrSoleProjectLead)
		users.On("SoleLeadProjects", mock.Anything, 7).Return([]model.SoleLeadProject{
			{ProjectID: 3, Name: "Caribou Range"},
		}, nil)

		req := withMuxVars(requestAs("DELETE", "/api/user/7/delete", "", adminUser()), map[string]string{"userId": "7"})
		w := httptest.NewRecorder()
		handleRemoveUser(users)(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, []string{"Caribou Range (3)"}, body.Errors)
	})
}

func TestSystemRoles(t *testing.T) {
	t.Run("grant", func(t *testing.T) {
		users := &MockUsersStore{}
		users.On("AddSystemRoles", mock.Anything, 7, []int{2, 3}, 1).Return(nil)

		req := withMuxVars(requestAs("POST", "/api/user/7/system-roles/create", `{"roles":[2,3]}`, adminUser()), map[string]string{"userId": "7"})
		w := httptest.NewRecorder()
		handleAddSystemRoles(users)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		users.AssertExpectations(t)
	})

	t.Run("grant with no roles", func(t *testing.T) {
		users := &MockUsersStore{}

		req := withMuxVars(requestAs("POST", "/api/user/7/system-roles/create", `{"roles":[]}`, adminUser()), map[string]string{"userId": "7"})
		w := httptest.NewRecorder()
		handleAddSystemRoles(users)(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("revoke", func(t *testing.T) {
		users := &MockUsersStore{}
		users.On("RemoveSystemRole", mock.Anything, 7, 2).Return(nil)

		req := withMuxVars(requestAs("DELETE", "/api/user/7/system-roles/delete?roleId=2", "", adminUser()), map[string]string{"userId": "7"})
		w := httptest.NewRecorder()
		handleRemoveSystemRole(users)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("revoke without role id", func(t *testing.T) {
		users := &MockUsersStore{}

		req := withMuxVars(requestAs("DELETE", "/api/user/7/system-roles/delete", "", adminUser()), map[string]string{"userId": "7"})
		w := httptest.NewRecorder()
		handleRemoveSystemRole(users)(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
