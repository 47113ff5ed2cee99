package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bcgov/restoration-tracker/pkg/apierror"
	"github.com/bcgov/restoration-tracker/pkg/audit"
	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/server"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

// RegisterUserEndpoints registers system user administration.
func RegisterUserEndpoints(s *server.Server) {
	userRouter := s.API.PathPrefix("/user").Subrouter()

	userRouter.Handle("/self", guard(s, activeUser, handleGetSelf())).Methods("GET")
	userRouter.Handle("/list", guard(s, systemAdmin, handleListUsers(s.UsersStore))).Methods("GET")
	userRouter.Handle("", guard(s, systemAdmin, handleAddUser(s.UsersStore))).Methods("POST")
	userRouter.Handle("/{userId}/get", guard(s, systemAdmin, handleGetUser(s.UsersStore))).Methods("GET")
	userRouter.Handle("/{userId}/delete", guard(s, systemAdmin, handleRemoveUser(s.UsersStore))).Methods("DELETE")
	userRouter.Handle("/{userId}/system-roles/create", guard(s, systemAdmin, handleAddSystemRoles(s.UsersStore))).Methods("POST")
	userRouter.Handle("/{userId}/system-roles/delete", guard(s, systemAdmin, handleRemoveSystemRole(s.UsersStore))).Methods("DELETE")
}

func handleGetSelf() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if user == nil {
			apierror.Write(w, apierror.NotFound("System user not found"))
			return
		}
		respondWithJSON(w, http.StatusOK, user)
	}
}

func handleListUsers(users store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.ListSystemUsers(r.Context())
		if err != nil {
			apierror.Write(w, apierror.Internal("Failed to list system users", err))
			return
		}
		respondWithJSON(w, http.StatusOK, list)
	}
}

func handleAddUser(users store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body model.NewUser
		if err := decodeJSON(r, &body); err != nil {
			apierror.Write(w, err)
			return
		}
		if body.UserIdentifier == "" || body.IdentitySource == "" {
			apierror.Write(w, apierror.BadRequest("Missing required parameter", "userIdentifier and identitySource are required"))
			return
		}

		user, err := users.AddSystemUser(r.Context(), body, currentUserID(r))
		if err != nil {
			apierror.Write(w, storeError(err, "System user not found"))
			return
		}

		if body.RoleID != 0 {
			audit.Log(audit.RoleChangeEvent{
				Actor:     actorFrom(r),
				Outcome:   outcome(nil),
				UserID:    user.ID,
				RoleIDs:   []int{body.RoleID},
				Operation: "grant",
			})
		}
		respondWithJSON(w, http.StatusOK, user)
	}
}

func handleGetUser(users store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := intVar(r, "userId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		user, err := users.GetSystemUser(r.Context(), userID)
		if err != nil {
			apierror.Write(w, storeError(err, "System user not found"))
			return
		}
		respondWithJSON(w, http.StatusOK, user)
	}
}

func handleRemoveUser(users store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := intVar(r, "userId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		err = users.RemoveSystemUser(r.Context(), userID, currentUserID(r))
		audit.Log(audit.UserRemoveEvent{Actor: actorFrom(r), Outcome: outcome(err), UserID: userID})
		if err != nil {
			if errors.Is(err, store.ErrSoleProjectLead) {
				apierror.Write(w, soleLeadError(r, users, userID))
				return
			}
			apierror.Write(w, storeError(err, "System user not found"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// soleLeadError names the projects that block removing a user.
func soleLeadError(r *http.Request, users store.UsersStore, userID int) error {
	projects, err := users.SoleLeadProjects(r.Context(), userID)
	if err != nil {
		return apierror.Internal("Failed to list projects led by user", err)
	}
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, fmt.Sprintf("%s (%d)", p.Name, p.ProjectID))
	}
	return apierror.BadRequest(store.ErrSoleProjectLead.Error(), names...)
}

func handleAddSystemRoles(users store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := intVar(r, "userId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		var body model.SystemRolesRequest
		if err := decodeJSON(r, &body); err != nil {
			apierror.Write(w, err)
			return
		}
		if len(body.Roles) == 0 {
			apierror.Write(w, apierror.BadRequest("Missing required parameter", "roles"))
			return
		}

		err = users.AddSystemRoles(r.Context(), userID, body.Roles, currentUserID(r))
		audit.Log(audit.RoleChangeEvent{
			Actor:     actorFrom(r),
			Outcome:   outcome(err),
			UserID:    userID,
			RoleIDs:   body.Roles,
			Operation: "grant",
		})
		if err != nil {
			apierror.Write(w, storeError(err, "System user not found"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func handleRemoveSystemRole(users store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := intVar(r, "userId")
		if err != nil {
			apierror.Write(w, err)
			return
		}
		roleID, err := strconv.Atoi(r.URL.Query().Get("roleId"))
		if err != nil || roleID < 1 {
			apierror.Write(w, apierror.BadRequest("Missing required parameter", "roleId"))
			return
		}

		err = users.RemoveSystemRole(r.Context(), userID, roleID)
		audit.Log(audit.RoleChangeEvent{
			Actor:     actorFrom(r),
			Outcome:   outcome(err),
			UserID:    userID,
			RoleIDs:   []int{roleID},
			Operation: "revoke",
		})
		if err != nil {
			apierror.Write(w, storeError(err, "System role not held by user"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
