package endpoints

import (
	"context"
	"database/sql/driver"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bcgov/restoration-tracker/pkg/identity"
	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/objectstore"
	gormstore "github.com/bcgov/restoration-tracker/pkg/server/store/gorm"
)

// These tests run handlers against the gorm stores over sqlmock so the
// arguments a handler builds meet the statement preconditions.

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 mockDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

// attachmentKeyArg matches an object key for projectID and fileName and
// remembers it.
type attachmentKeyArg struct {
	projectID int
	fileName  string
	uuid      *string
	key       *string
}

func (m attachmentKeyArg) Match(v driver.Value) bool {
	key, ok := v.(string)
	if !ok || *m.uuid == "" {
		return false
	}
	*m.key = key
	return key == objectstore.AttachmentKey(m.projectID, *m.uuid, m.fileName)
}

// uuidArg remembers the generated attachment uuid.
type uuidArg struct{ uuid *string }

func (m uuidArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	*m.uuid = s
	return ok && s != ""
}

var attachmentColumns = []string{
	"project_attachment_id", "project_id", "uuid", "file_name", "file_type", "file_size",
	"title", "description", "key", "last_modified", "revision_count",
}

func TestUploadAttachmentWithStore(t *testing.T) {
	s, _ := newTestServer(t)
	db, mock := setupMockDB(t)
	attachments := gormstore.NewAttachmentsStore(db)

	var uuid, key string
	stored := "projects/4/uuid-0/report.pdf"
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO project_attachment`).
		WithArgs(4, uuidArg{&uuid}, "report.pdf", "application/pdf", 8, "Final report", nil,
			attachmentKeyArg{projectID: 4, fileName: "report.pdf", uuid: &uuid, key: &key}, 7).
		WillReturnRows(sqlmock.NewRows([]string{"project_attachment_id", "key"}).AddRow(3, stored))
	mock.ExpectQuery(`FROM project_attachment\s+WHERE project_id = \$1\s+AND project_attachment_id = \$2`).
		WithArgs(4, 3).
		WillReturnRows(sqlmock.NewRows(attachmentColumns).
			AddRow(3, 4, "uuid-0", "report.pdf", "application/pdf", 8, "Final report", nil, stored, time.Now(), 0))
	mock.ExpectCommit()

	req := multipartRequest(t, "/api/project/4/attachments/upload", "report.pdf", "%PDF-1.7", map[string]string{"title": "Final report"}, plainUser())
	req = withMuxVars(req, map[string]string{"projectId": "4"})
	w := httptest.NewRecorder()
	handleUploadAttachment(attachments, s.Objects, s.Metrics, s.Config.AttachmentMaxBytes)(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, objectstore.AttachmentKey(4, uuid, "report.pdf"), key)

	var saved model.Attachment
	decodeBody(t, w, &saved)
	assert.Equal(t, 3, saved.ID)

	// The key the row returns is where the object lands.
	obj, err := s.Objects.Open(context.Background(), stored)
	require.NoError(t, err)
	defer obj.Close()
	data, _ := io.ReadAll(obj)
	assert.Equal(t, "%PDF-1.7", string(data))
}

func TestCreateProjectWithStore(t *testing.T) {
	db, mock := setupMockDB(t)
	projects := gormstore.NewProjectsStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO project \(`).
		WithArgs("Caribou Range", "Restore *linear* features", "2024-04-01", nil, false,
			sqlmock.AnyArg(), sqlmock.AnyArg(), 8).
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(21))
	mock.ExpectExec(`INSERT INTO project_contact`).
		WithArgs(21, "Jane", "Doe", "jane@example.com", "FLNRO", true, true, 8).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO project_participation`).
		WithArgs(21, 8, 8, model.ProjectRoleLead).
		WillReturnRows(sqlmock.NewRows([]string{"project_participation_id"}).AddRow(30))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	handleCreateProject(projects)(w, requestAs("POST", "/api/project/create", projectBody, creatorUser()))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":21}`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccessRequestWithStore(t *testing.T) {
	body := `{"name":"Jane Doe","username":"jdoe","email":"jane@example.com","identitySource":"IDIR","userGuid":"SPOOFED","role":2,"reason":"field work"}`

	t.Run("request is filed for the token holder", func(t *testing.T) {
		s, ts := newTestServer(t)
		db, mock := setupMockDB(t)
		activities := gormstore.NewActivitiesStore(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT count\(\*\)`).
			WithArgs("GUID-TEST", model.ActivityStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO administrative_activity`).
			WithArgs(nil, model.ActivityTypeSystemAccess, model.ActivityStatusPending, jsonContains{`"userGuid":"GUID-TEST"`}).
			WillReturnRows(sqlmock.NewRows([]string{"id", "create_date"}).AddRow(42, time.Now()))
		mock.ExpectCommit()

		w := httptest.NewRecorder()
		handleCreateAccessRequest(activities, s.Authorizer, s.Mailer)(w, requestAs("POST", "/api/administrative-activity", body, nil))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var result model.AccessRequestResult
		decodeBody(t, w, &result)
		assert.Equal(t, 42, result.ID)
		assert.Len(t, ts.notifier.sent, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("token without a guid is rejected", func(t *testing.T) {
		s, ts := newTestServer(t)
		db, mock := setupMockDB(t)
		activities := gormstore.NewActivitiesStore(db)

		mock.ExpectBegin()
		mock.ExpectRollback()

		req := requestAs("POST", "/api/administrative-activity", body, nil)
		id, _ := identity.Get(req.Context())
		id.UserGUID = ""

		w := httptest.NewRecorder()
		handleCreateAccessRequest(activities, s.Authorizer, s.Mailer)(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.Empty(t, ts.notifier.sent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// jsonContains matches a JSON document argument containing fragment.
type jsonContains struct{ fragment string }

func (m jsonContains) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && strings.Contains(s, m.fragment)
}
