package endpoints

import (
	"net/http"

	"github.com/bcgov/restoration-tracker/pkg/apierror"
	"github.com/bcgov/restoration-tracker/pkg/server"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

// RegisterCodesEndpoints registers GET /api/codes (public)
func RegisterCodesEndpoints(s *server.Server) {
	s.API.HandleFunc("/codes", handleGetCodes(s.CodesStore)).Methods("GET")
}

func handleGetCodes(codesStore store.CodesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codes, err := codesStore.GetCodes(r.Context())
		if err != nil {
			apierror.Write(w, apierror.Internal("Failed to fetch codes", err))
			return
		}
		respondWithJSON(w, http.StatusOK, codes)
	}
}
