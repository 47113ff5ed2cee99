package endpoints

import (
	"errors"
	"net/http"

	"github.com/bcgov/restoration-tracker/pkg/apierror"
	"github.com/bcgov/restoration-tracker/pkg/audit"
	"github.com/bcgov/restoration-tracker/pkg/authz"
	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/server"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

// RegisterParticipantEndpoints registers project team management.
func RegisterParticipantEndpoints(s *server.Server) {
	participants := s.ParticipantsStore
	r := s.API.PathPrefix("/project/{projectId}/participants").Subrouter()

	r.Handle("", guard(s, projectReader(s), handleListParticipants(participants))).Methods("GET")
	r.Handle("/self", guard(s, anyProjectRole, handleGetSelfParticipation())).Methods("GET")
	r.Handle("/create", guard(s, projectLead, handleAddParticipants(participants))).Methods("POST")
	r.Handle("/{participationId}/update", guard(s, projectLead, handleUpdateParticipantRole(participants))).Methods("PUT")
	r.Handle("/{participationId}/delete", guard(s, projectLead, handleRemoveParticipant(participants))).Methods("DELETE")
}

func handleListParticipants(participants store.ParticipantsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		list, err := participants.ListParticipants(r.Context(), projectID)
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		respondWithJSON(w, http.StatusOK, list)
	}
}

// handleGetSelfParticipation answers from the participation loaded while
// authorizing. Administrators without one get null.
func handleGetSelfParticipation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		subject, ok := authz.SubjectFrom(r.Context())
		if !ok {
			apierror.Write(w, apierror.Forbidden("Access Denied"))
			return
		}
		respondWithJSON(w, http.StatusOK, subject.Participation(projectID))
	}
}

func handleAddParticipants(participants store.ParticipantsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		var body model.NewParticipantsRequest
		if err := decodeJSON(r, &body); err != nil {
			apierror.Write(w, err)
			return
		}
		if len(body.Participants) == 0 {
			apierror.Write(w, apierror.BadRequest("Missing required parameter", "participants"))
			return
		}

		err = participants.AddParticipants(r.Context(), projectID, body.Participants, currentUserID(r))
		for _, p := range body.Participants {
			audit.Log(audit.ParticipantEvent{
				Actor:     actorFrom(r),
				Outcome:   outcome(err),
				ProjectID: projectID,
				RoleID:    p.RoleID,
				Operation: "add",
			})
		}
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func handleUpdateParticipantRole(participants store.ParticipantsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}
		participationID, err := intVar(r, "participationId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		var body model.ParticipantRoleUpdate
		if err := decodeJSON(r, &body); err != nil {
			apierror.Write(w, err)
			return
		}
		if body.RoleID < 1 {
			apierror.Write(w, apierror.BadRequest("Missing required parameter", "roleId"))
			return
		}

		err = participants.UpdateParticipantRole(r.Context(), projectID, participationID, body.RoleID, currentUserID(r))
		audit.Log(audit.ParticipantEvent{
			Actor:           actorFrom(r),
			Outcome:         outcome(err),
			ProjectID:       projectID,
			ParticipationID: participationID,
			RoleID:          body.RoleID,
			Operation:       "update",
		})
		if err != nil {
			apierror.Write(w, storeError(err, "Project participant not found"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func handleRemoveParticipant(participants store.ParticipantsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}
		participationID, err := intVar(r, "participationId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		err = participants.RemoveParticipant(r.Context(), projectID, participationID)
		audit.Log(audit.ParticipantEvent{
			Actor:           actorFrom(r),
			Outcome:         outcome(err),
			ProjectID:       projectID,
			ParticipationID: participationID,
			Operation:       "remove",
		})
		if err != nil {
			if errors.Is(err, store.ErrLastProjectLead) {
				apierror.Write(w, apierror.BadRequest(err.Error(), "assign another Project Lead first"))
				return
			}
			apierror.Write(w, storeError(err, "Project participant not found"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
