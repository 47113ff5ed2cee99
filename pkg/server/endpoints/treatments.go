package endpoints

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bcgov/restoration-tracker/pkg/apierror"
	"github.com/bcgov/restoration-tracker/pkg/server"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
	"github.com/bcgov/restoration-tracker/pkg/spatial"
)

// RegisterTreatmentEndpoints registers treatment uploads and queries.
func RegisterTreatmentEndpoints(s *server.Server) {
	treatments := s.TreatmentsStore
	r := s.API.PathPrefix("/project/{projectId}/treatments").Subrouter()

	r.Handle("/upload", guard(s, projectEditor, handleUploadTreatments(treatments, s.Config.AttachmentMaxBytes))).Methods("POST")
	r.Handle("/list", guard(s, projectReader(s), handleListTreatments(treatments))).Methods("GET")
	r.Handle("/years", guard(s, projectReader(s), handleTreatmentYears(treatments))).Methods("GET")
	r.Handle("/year/{year}/delete", guard(s, projectEditor, handleDeleteTreatmentYear(treatments))).Methods("DELETE")
}

// readTreatmentUpload returns the GeoJSON of a multipart "media" file or
// of a JSON request body.
func readTreatmentUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+formMemory)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, apierror.BadRequest("Invalid request body", err.Error())
		}
		return data, nil
	}

	if err := r.ParseMultipartForm(formMemory); err != nil {
		return nil, apierror.BadRequest("Invalid multipart request", err.Error())
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile("media")
	if err != nil {
		return nil, apierror.BadRequest("Missing required parameter", "media")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apierror.BadRequest("Invalid treatment file", err.Error())
	}
	return data, nil
}

func handleUploadTreatments(treatments store.TreatmentsStore, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		data, err := readTreatmentUpload(w, r, maxBytes)
		if err != nil {
			apierror.Write(w, err)
			return
		}

		types, err := treatments.TreatmentTypes(r.Context())
		if err != nil {
			apierror.Write(w, apierror.Internal("Failed to load treatment types", err))
			return
		}

		units, problems := spatial.ParseTreatmentUnits(data, types)
		if len(problems) > 0 {
			apierror.Write(w, apierror.BadRequest("Invalid treatment file", problems...))
			return
		}

		result, err := treatments.UploadTreatments(r.Context(), projectID, units, currentUserID(r))
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		respondWithJSON(w, http.StatusOK, result)
	}
}

func handleListTreatments(treatments store.TreatmentsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}
		years, err := queryInts(r, "years")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		rows, err := treatments.ListTreatments(r.Context(), projectID, years)
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		respondWithJSON(w, http.StatusOK, rows)
	}
}

func handleTreatmentYears(treatments store.TreatmentsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		years, err := treatments.TreatmentYears(r.Context(), projectID)
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		respondWithJSON(w, http.StatusOK, years)
	}
}

func handleDeleteTreatmentYear(treatments store.TreatmentsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}
		raw := mux.Vars(r)["year"]
		year, err := strconv.Atoi(raw)
		if err != nil {
			apierror.Write(w, apierror.BadRequest("Invalid year", fmt.Sprintf("%q is not a year", raw)))
			return
		}

		if err := treatments.DeleteTreatmentYear(r.Context(), projectID, year); err != nil {
			apierror.Write(w, storeError(err, "No treatments recorded for that year"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
