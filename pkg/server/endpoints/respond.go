package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bcgov/restoration-tracker/pkg/apierror"
	"github.com/bcgov/restoration-tracker/pkg/audit"
	"github.com/bcgov/restoration-tracker/pkg/authz"
	"github.com/bcgov/restoration-tracker/pkg/identity"
	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/objectstore"
	"github.com/bcgov/restoration-tracker/pkg/queries"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		apierror.Write(w, apierror.Internal("Failed to encode response", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apierror.BadRequest("Invalid request body", err.Error())
	}
	return nil
}

// intVar parses a numeric route variable.
func intVar(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, apierror.BadRequest(fmt.Sprintf("Invalid %s", name), fmt.Sprintf("%q is not a valid id", raw))
	}
	return id, nil
}

// queryInts parses every value of a repeated numeric query parameter.
func queryInts(r *http.Request, name string) ([]int, error) {
	values := r.URL.Query()[name]
	out := make([]int, 0, len(values))
	for _, v := range values {
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil, apierror.BadRequest(fmt.Sprintf("Invalid %s", name), fmt.Sprintf("%q is not a number", v))
		}
		out = append(out, i)
	}
	return out, nil
}

// storeError maps store sentinels to HTTP errors.
func storeError(err error, notFound string) error {
	var apiErr *apierror.Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, store.ErrNotFound):
		return apierror.NotFound(notFound)
	case errors.Is(err, store.ErrConflict):
		return apierror.Conflict("Conflict", err.Error())
	case errors.Is(err, model.ErrInvalidTransition):
		return apierror.Conflict("Invalid status change", err.Error())
	case errors.Is(err, store.ErrLastProjectLead), errors.Is(err, store.ErrSoleProjectLead), errors.Is(err, store.ErrUnknownIdentitySource):
		return apierror.BadRequest(err.Error())
	case errors.Is(err, queries.ErrMissingParameter):
		return apierror.BadRequest("Missing required parameter", err.Error())
	case errors.Is(err, objectstore.ErrInvalidKey):
		return apierror.BadRequest("Invalid file name", err.Error())
	}
	return apierror.Internal("Database operation failed", err)
}

// currentUser returns the caller's system user loaded by the authorizer.
func currentUser(r *http.Request) *model.SystemUser {
	return authz.SystemUserFrom(r.Context())
}

func currentUserID(r *http.Request) int {
	if u := currentUser(r); u != nil {
		return u.ID
	}
	return 0
}

// actorFrom describes the caller for audit events.
func actorFrom(r *http.Request) audit.Actor {
	var a audit.Actor
	if id, ok := identity.Get(r.Context()); ok && id != nil {
		a.Username = id.Username
		a.ClientIP = id.ClientIP()
	}
	if u := currentUser(r); u != nil {
		a.SystemUserID = u.ID
		if a.Username == "" {
			a.Username = u.Identifier
		}
	}
	return a
}

func outcome(err error) audit.Outcome {
	if err != nil {
		return audit.Outcome{Success: false, ErrorMessage: err.Error()}
	}
	return audit.Outcome{Success: true}
}
