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

const treatmentFile = `{"type":"FeatureCollection","features":[{
	"type":"Feature",
	"properties":{"ID":"TU-1","Width_m":5,"Length_m":120,"Area_ha":0.06,"Year":2023,"Treatments":"Tree Planting; Seeding"},
	"geometry":{"type":"Polygon","coordinates":[[[-123.0,49.0],[-123.0,49.1],[-122.9,49.1],[-123.0,49.0]]]}
}]}`

var treatmentTypes = map[string]int{"tree planting": 1, "seeding": 2}

func TestUploadTreatments(t *testing.T) {
	t.Run("geojson body", func(t *testing.T) {
		treatments := &MockTreatmentsStore{}
		treatments.On("TreatmentTypes", mock.Anything).Return(treatmentTypes, nil)
		treatments.On("UploadTreatments", mock.Anything, 4, mock.MatchedBy(func(units []model.TreatmentUnit) bool {
			return len(units) == 1 && units[0].UnitID == "TU-1" && units[0].Year == 2023 && len(units[0].TypeNames) == 2
		}), 7).Return(&model.TreatmentUploadResult{Units: 1, Treatments: 2}, nil)

		req := withMuxVars(requestAs("POST", "/api/project/4/treatments/upload", treatmentFile, plainUser()), map[string]string{"projectId": "4"})
		w := httptest.NewRecorder()
		handleUploadTreatments(treatments, 1<<20)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"units":1,"treatments":2}`, w.Body.String())
	})

	t.Run("multipart file", func(t *testing.T) {
		treatments := &MockTreatmentsStore{}
		treatments.On("TreatmentTypes", mock.Anything).Return(treatmentTypes, nil)
		treatments.On("UploadTreatments", mock.Anything, 4, mock.Anything, 7).Return(&model.TreatmentUploadResult{Units: 1, Treatments: 2}, nil)

		req := multipartRequest(t, "/api/project/4/treatments/upload", "units.geojson", treatmentFile, nil, plainUser())
		req = withMuxVars(req, map[string]string{"projectId": "4"})
		w := httptest.NewRecorder()
		handleUploadTreatments(treatments, 1<<20)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		treatments.AssertExpectations(t)
	})

	t.Run("unknown treatment type", func(t *testing.T) {
		treatments := &MockTreatmentsStore{}
		treatments.On("TreatmentTypes", mock.Anything).Return(map[string]int{"seeding": 2}, nil)

		req := withMuxVars(requestAs("POST", "/api/project/4/treatments/upload", treatmentFile, plainUser()), map[string]string{"projectId": "4"})
		w := httptest.NewRecorder()
		handleUploadTreatments(treatments, 1<<20)(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Errors[0], "Tree Planting")
		treatments.AssertNotCalled(t, "UploadTreatments", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestListTreatments(t *testing.T) {
	t.Run("filtered by year", func(t *testing.T) {
		treatments := &MockTreatmentsStore{}
		treatments.On("ListTreatments", mock.Anything, 4, []int{2022, 2023}).Return([]model.TreatmentRow{{UnitID: "TU-1", Year: 2023}}, nil)

		req := withMuxVars(requestAs("GET", "/api/project/4/treatments/list?years=2022&years=2023", "", plainUser()), map[string]string{"projectId": "4"})
		w := httptest.NewRecorder()
		handleListTreatments(treatments)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		treatments.AssertExpectations(t)
	})

	t.Run("bad year", func(t *testing.T) {
		treatments := &MockTreatmentsStore{}

		req := withMuxVars(requestAs("GET", "/api/project/4/treatments/list?years=last", "", plainUser()), map[string]string{"projectId": "4"})
		w := httptest.NewRecorder()
		handleListTreatments(treatments)(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTreatmentYears(t *testing.T) {
	treatments := &MockTreatmentsStore{}
	treatments.On("TreatmentYears", mock.Anything, 4).Return([]int{2022, 2023}, nil)

	req := withMuxVars(requestAs("GET", "/api/project/4/treatments/years", "", plainUser()), map[string]string{"projectId": "4"})
	w := httptest.NewRecorder()
	handleTreatmentYears(treatments)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[2022,2023]`, w.Body.String())
}

func TestDeleteTreatmentYear(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		treatments := &MockTreatmentsStore{}
		treatments.On("DeleteTreatmentYear", mock.Anything, 4, 2023).Return(nil)

		req := withMuxVars(requestAs("DELETE", "/api/project/4/treatments/year/2023/delete", "", plainUser()),
			map[string]string{"projectId": "4", "year": "2023"})
		w := httptest.NewRecorder()
		handleDeleteTreatmentYear(treatments)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no treatments that year", func(t *testing.T) {
		treatments := &MockTreatmentsStore{}
		treatments.On("DeleteTreatmentYear", mock.Anything, 4, 1999).Return(store.ErrNotFound)

		req := withMuxVars(requestAs("DELETE", "/api/project/4/treatments/year/1999/delete", "", plainUser()),
			map[string]string{"projectId": "4", "year": "1999"})
		w := httptest.NewRecorder()
		handleDeleteTreatmentYear(treatments)(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
