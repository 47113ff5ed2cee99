package endpoints

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bcgov/restoration-tracker/pkg/apierror"
	"github.com/bcgov/restoration-tracker/pkg/audit"
	"github.com/bcgov/restoration-tracker/pkg/authz"
	"github.com/bcgov/restoration-tracker/pkg/identity"
	"github.com/bcgov/restoration-tracker/pkg/metrics"
	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/notify"
	"github.com/bcgov/restoration-tracker/pkg/server"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

// RegisterActivityEndpoints registers the system access request workflow.
func RegisterActivityEndpoints(s *server.Server) {
	api := s.API

	// Any authenticated caller may ask for access; no system user needed.
	api.HandleFunc("/administrative-activity",
		handleCreateAccessRequest(s.ActivitiesStore, s.Authorizer, s.Mailer)).Methods("POST")
	api.HandleFunc("/administrative-activity/system-access/pending",
		handlePendingAccessRequest(s.ActivitiesStore)).Methods("GET")

	api.Handle("/administrative-activities",
		guard(s, systemAdmin, handleListActivities(s.ActivitiesStore))).Methods("GET")
	api.Handle("/administrative-activity/{id}",
		guard(s, systemAdmin, handleUpdateActivityStatus(s.ActivitiesStore, s.Metrics))).Methods("PUT")
	api.Handle("/administrative-activity/system-access/{id}/approve",
		guard(s, systemAdmin, handleApproveAccessRequest(s.ActivitiesStore, s.Metrics, s.Mailer))).Methods("PUT")
}

func handleCreateAccessRequest(activities store.ActivitiesStore, authorizer *authz.Authorizer, mailer *notify.Mailer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok || id == nil {
			apierror.Write(w, apierror.Unauthorized("Access Denied"))
			return
		}

		var req model.AccessRequest
		if err := decodeJSON(r, &req); err != nil {
			apierror.Write(w, err)
			return
		}
		// The requester is always the token holder.
		req.UserGUID = id.UserGUID

		ctx, subject, err := authorizer.Subject(r.Context())
		if err != nil {
			apierror.Write(w, authz.ToAPIError(err))
			return
		}
		r = r.WithContext(ctx)

		reportedID := 0
		if subject.User != nil {
			reportedID = subject.User.ID
		}

		result, err := activities.CreateAccessRequest(ctx, reportedID, req)
		event := audit.AccessRequestEvent{Actor: actorFrom(r), Outcome: outcome(err)}
		if result != nil {
			event.ActivityID = result.ID
		}
		audit.Log(event)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				apierror.Write(w, apierror.Conflict("An access request is already pending"))
				return
			}
			apierror.Write(w, storeError(err, "Access request not found"))
			return
		}

		mailer.AccessRequested(ctx, req)
		respondWithJSON(w, http.StatusOK, result)
	}
}

func handlePendingAccessRequest(activities store.ActivitiesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok || id == nil {
			apierror.Write(w, apierror.Unauthorized("Access Denied"))
			return
		}
		if id.UserGUID == "" {
			respondWithJSON(w, http.StatusOK, false)
			return
		}

		pending, err := activities.HasPendingAccessRequest(r.Context(), id.UserGUID)
		if err != nil {
			apierror.Write(w, apierror.Internal("Failed to check pending access requests", err))
			return
		}
		respondWithJSON(w, http.StatusOK, pending)
	}
}

func handleListActivities(activities store.ActivitiesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		types := query["type"]
		statuses := query["status"]
		for _, s := range statuses {
			if !model.IsActivityStatus(s) {
				apierror.Write(w, apierror.BadRequest("Invalid status", s))
				return
			}
		}

		list, err := activities.ListActivities(r.Context(), types, statuses)
		if err != nil {
			apierror.Write(w, apierror.Internal("Failed to list administrative activities", err))
			return
		}
		respondWithJSON(w, http.StatusOK, list)
	}
}

func handleUpdateActivityStatus(activities store.ActivitiesStore, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activityID, err := intVar(r, "id")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		var body model.ActivityStatusUpdate
		if err := decodeJSON(r, &body); err != nil {
			apierror.Write(w, err)
			return
		}
		if !model.CanTransition(model.ActivityStatusPending, body.Status) {
			apierror.Write(w, apierror.BadRequest("Invalid status",
				"status must be "+strings.Join([]string{model.ActivityStatusActioned, model.ActivityStatusRejected}, " or ")))
			return
		}

		err = activities.UpdateActivityStatus(r.Context(), activityID, body.Status, currentUserID(r))
		audit.Log(audit.AccessStatusEvent{
			Actor:      actorFrom(r),
			Outcome:    outcome(err),
			ActivityID: activityID,
			Status:     body.Status,
		})
		if err != nil {
			apierror.Write(w, storeError(err, "Administrative activity not found"))
			return
		}

		m.ObserveTransition(body.Status)
		w.WriteHeader(http.StatusOK)
	}
}

func handleApproveAccessRequest(activities store.ActivitiesStore, m *metrics.Metrics, mailer *notify.Mailer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activityID, err := intVar(r, "id")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		var body model.ApproveAccessRequest
		if err := decodeJSON(r, &body); err != nil {
			apierror.Write(w, err)
			return
		}
		if body.UserIdentifier == "" || body.IdentitySource == "" {
			apierror.Write(w, apierror.BadRequest("Missing required parameter", "userIdentifier and identitySource are required"))
			return
		}

		user, err := activities.ApproveAccessRequest(r.Context(), activityID, body, currentUserID(r))
		audit.Log(audit.AccessApproveEvent{
			Actor:          actorFrom(r),
			Outcome:        outcome(err),
			ActivityID:     activityID,
			UserIdentifier: body.UserIdentifier,
			RoleIDs:        body.RoleIDs,
		})
		if err != nil {
			apierror.Write(w, storeError(err, "Administrative activity not found"))
			return
		}

		m.ObserveTransition(model.ActivityStatusActioned)

		email, name := "", user.Identifier
		if user.Email != nil {
			email = *user.Email
		}
		if user.DisplayName != nil && *user.DisplayName != "" {
			name = *user.DisplayName
		}
		mailer.AccessApproved(r.Context(), email, name)

		respondWithJSON(w, http.StatusOK, user)
	}
}
