package audit

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewStoreWithDB(conn), mock
}

// jsonArg matches the sdata column when it decodes to a map holding want.
type jsonArg struct {
	sdid, param, want string
}

func (a jsonArg) Match(v driver.Value) bool {
	raw, ok := v.([]byte)
	if !ok {
		return false
	}
	var sd map[string]map[string]string
	if json.Unmarshal(raw, &sd) != nil {
		return false
	}
	return sd[a.sdid][a.param] == a.want
}

func TestStoreSave(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		actor    sql.NullInt64
		msgID    string
		severity Severity
		sdata    sqlmock.Argument
	}{
		{
			name: "project created by a user",
			event: ProjectEvent{
				Actor:     Actor{SystemUserID: 4, Username: "jdoe@idir", ClientIP: "10.0.0.1"},
				Outcome:   Outcome{Success: true},
				ProjectID: 12,
				Operation: "create",
			},
			actor:    sql.NullInt64{Int64: 4, Valid: true},
			msgID:    "project-create",
			severity: SeverityInfo,
			sdata:    sqlmock.AnyArg(),
		},
		{
			name:     "rejected access request has no actor row",
			event:    AccessRequestEvent{Outcome: Outcome{ErrorMessage: "duplicate"}},
			actor:    sql.NullInt64{},
			msgID:    "access-request",
			severity: SeverityWarning,
			sdata:    sqlmock.AnyArg(),
		},
		{
			name:     "user removal",
			event:    UserRemoveEvent{Actor: Actor{SystemUserID: 1}, Outcome: Outcome{Success: true}, UserID: 9},
			actor:    sql.NullInt64{Int64: 1, Valid: true},
			msgID:    "user-remove",
			severity: SeverityInfo,
			sdata:    sqlmock.AnyArg(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			mock.ExpectExec(`INSERT INTO audit_log`).
				WithArgs(tt.actor, tt.msgID, int(tt.severity), tt.event.Message(), tt.sdata, sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(1, 1))

			require.NoError(t, s.Save(tt.event))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStoreSaveStructuredData(t *testing.T) {
	s, mock := newMockStore(t)
	event := UserRemoveEvent{Actor: Actor{SystemUserID: 1}, Outcome: Outcome{Success: true}, UserID: 9}

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), jsonArg{SDIDSubject, "system_user", "9"}, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Save(event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSaveError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO audit_log`).WillReturnError(errors.New("relation does not exist"))

	err := s.Save(UserRemoveEvent{UserID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestLogWritesSyslogAndRow(t *testing.T) {
	s, mock := newMockStore(t)

	var buf bytes.Buffer
	DefaultLogger.SetWriter(&buf)
	SetEnabled(true)
	SetStore(s)
	t.Cleanup(func() { SetStore(nil) })

	mock.ExpectExec(`INSERT INTO audit_log`).WillReturnResult(sqlmock.NewResult(1, 1))

	Log(RoleChangeEvent{Actor: Actor{SystemUserID: 1}, Outcome: Outcome{Success: true}, UserID: 2, RoleIDs: []int{2}})

	assert.Contains(t, buf.String(), "role-change")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreWithoutConnection(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Save(UserRemoveEvent{UserID: 1}))
	assert.NoError(t, s.Close())

	_, err := NewStore("")
	assert.Error(t, err)
}

func TestStoreClose(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectClose()
	require.NoError(t, NewStoreWithDB(conn).Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
