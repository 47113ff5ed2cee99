package endpoints

import (
	"net/http"

	"github.com/bcgov/restoration-tracker/pkg/apierror"
	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/server"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

// RegisterDraftEndpoints registers the caller's saved project drafts.
func RegisterDraftEndpoints(s *server.Server) {
	drafts := s.DraftsStore

	s.API.Handle("/draft", guard(s, projectCreator, handleSaveDraft(drafts, false))).Methods("POST")
	s.API.Handle("/draft", guard(s, projectCreator, handleSaveDraft(drafts, true))).Methods("PUT")
	s.API.Handle("/drafts", guard(s, projectCreator, handleListDrafts(drafts))).Methods("GET")
	s.API.Handle("/draft/{draftId}/get", guard(s, projectCreator, handleGetDraft(drafts))).Methods("GET")
	s.API.Handle("/draft/{draftId}/delete", guard(s, projectCreator, handleDeleteDraft(drafts))).Methods("DELETE")
}

func handleSaveDraft(drafts store.DraftsStore, update bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body model.DraftRequest
		if err := decodeJSON(r, &body); err != nil {
			apierror.Write(w, err)
			return
		}
		if body.Name == "" || len(body.Data) == 0 {
			apierror.Write(w, apierror.BadRequest("Missing required parameter", "name and data are required"))
			return
		}

		var (
			draft *model.Draft
			err   error
		)
		if update {
			if body.ID < 1 {
				apierror.Write(w, apierror.BadRequest("Missing required parameter", "id"))
				return
			}
			draft, err = drafts.UpdateDraft(r.Context(), currentUserID(r), body.ID, body.Name, body.Data)
		} else {
			draft, err = drafts.CreateDraft(r.Context(), currentUserID(r), body.Name, body.Data)
		}
		if err != nil {
			apierror.Write(w, storeError(err, "Draft not found"))
			return
		}

		draft.Data = nil
		respondWithJSON(w, http.StatusOK, draft)
	}
}

func handleListDrafts(drafts store.DraftsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := drafts.ListDrafts(r.Context(), currentUserID(r))
		if err != nil {
			apierror.Write(w, apierror.Internal("Failed to list drafts", err))
			return
		}
		respondWithJSON(w, http.StatusOK, list)
	}
}

func handleGetDraft(drafts store.DraftsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draftID, err := intVar(r, "draftId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		draft, err := drafts.GetDraft(r.Context(), currentUserID(r), draftID)
		if err != nil {
			apierror.Write(w, storeError(err, "Draft not found"))
			return
		}
		respondWithJSON(w, http.StatusOK, draft)
	}
}

func handleDeleteDraft(drafts store.DraftsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draftID, err := intVar(r, "draftId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		if err := drafts.DeleteDraft(r.Context(), currentUserID(r), draftID); err != nil {
			apierror.Write(w, storeError(err, "Draft not found"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
