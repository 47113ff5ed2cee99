package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/bcgov/restoration-tracker/pkg/authz"
	"github.com/bcgov/restoration-tracker/pkg/config"
	"github.com/bcgov/restoration-tracker/pkg/identity"
	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/notify"
	"github.com/bcgov/restoration-tracker/pkg/objectstore"
	"github.com/bcgov/restoration-tracker/pkg/server"
)

// testStores holds the mocks behind a test server.
type testStores struct {
	health       *MockHealthStore
	codes        *MockCodesStore
	authz        *MockAuthzStore
	users        *MockUsersStore
	activities   *MockActivitiesStore
	projects     *MockProjectsStore
	participants *MockParticipantsStore
	attachments  *MockAttachmentsStore
	treatments   *MockTreatmentsStore
	drafts       *MockDraftsStore
	notifier     *recordingNotifier
}

type recordingNotifier struct {
	sent []notify.Email
	err  error
}

func (n *recordingNotifier) SendEmail(_ context.Context, e notify.Email) error {
	n.sent = append(n.sent, e)
	return n.err
}

type fakeAuthenticator struct {
	tokens map[string]*identity.Identity
}

func (f *fakeAuthenticator) Name() string { return "fake" }

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*identity.Identity, error) {
	if id, ok := f.tokens[token]; ok {
		copied := *id
		return &copied, nil
	}
	return nil, errors.New("token is expired")
}

func (f *fakeAuthenticator) Status(context.Context) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		BindAddress:        "127.0.0.1",
		Port:               "0",
		AttachmentMaxBytes: 1 << 20,
		APIListLimitMax:    50,
		AdminEmail:         "admin@example.com",
		AppHost:            "https://restoration.example.com",
	}
}

// newTestServer builds a server whose collaborators are mocks. Endpoints
// are not registered.
func newTestServer(t *testing.T) (*server.Server, *testStores) {
	t.Helper()

	ts := &testStores{
		health:       &MockHealthStore{},
		codes:        &MockCodesStore{},
		authz:        &MockAuthzStore{},
		users:        &MockUsersStore{},
		activities:   &MockActivitiesStore{},
		projects:     &MockProjectsStore{},
		participants: &MockParticipantsStore{},
		attachments:  &MockAttachmentsStore{},
		treatments:   &MockTreatmentsStore{},
		drafts:       &MockDraftsStore{},
		notifier:     &recordingNotifier{},
	}

	s := server.New(testConfig())
	s.HealthStore = ts.health
	s.CodesStore = ts.codes
	s.UsersStore = ts.users
	s.ActivitiesStore = ts.activities
	s.ProjectsStore = ts.projects
	s.ParticipantsStore = ts.participants
	s.AttachmentsStore = ts.attachments
	s.TreatmentsStore = ts.treatments
	s.DraftsStore = ts.drafts
	s.Authorizer = authz.NewAuthorizer(ts.authz)
	s.Authenticator = &fakeAuthenticator{tokens: map[string]*identity.Identity{
		"admin-token": {Username: "admin@idir", UserIdentifier: "admin", IdentitySource: "IDIR", UserGUID: "GUID-ADMIN"},
		"user-token":  {Username: "jdoe@idir", UserIdentifier: "jdoe", IdentitySource: "IDIR", UserGUID: "GUID-JDOE"},
	}}

	objects, err := objectstore.NewFS(t.TempDir())
	require.NoError(t, err)
	s.Objects = objects

	signer, err := objectstore.NewSigner("test-secret", time.Minute, s.Config.AppHost)
	require.NoError(t, err)
	s.Signer = signer

	s.Mailer = &notify.Mailer{
		Notifier:   ts.notifier,
		Templates:  notify.Templates{RequestAccess: "tmpl-request", AccessApproved: "tmpl-approved"},
		AdminEmail: s.Config.AdminEmail,
		AppHost:    s.Config.AppHost,
		Observe:    s.Metrics.ObserveNotification,
	}
	return s, ts
}

func adminUser() *model.SystemUser {
	return &model.SystemUser{
		ID:             1,
		Identifier:     "admin",
		IdentitySource: "IDIR",
		RoleIDs:        pq.Int64Array{1},
		RoleNames:      pq.StringArray{model.SystemRoleSystemAdmin},
	}
}

func plainUser() *model.SystemUser {
	return &model.SystemUser{ID: 7, Identifier: "jdoe", IdentitySource: "IDIR"}
}

func creatorUser() *model.SystemUser {
	return &model.SystemUser{
		ID:         8,
		Identifier: "creator",
		RoleIDs:    pq.Int64Array{2},
		RoleNames:  pq.StringArray{model.SystemRoleProjectCreator},
	}
}

// requestAs builds a request carrying an identity and an authorized
// subject for user, as the middleware chain would.
func requestAs(method, target, body string, user *model.SystemUser) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	id := &identity.Identity{Username: "tester", UserGUID: "GUID-TEST", RemoteIP: net.ParseIP("192.0.2.10")}
	if user != nil {
		id.UserIdentifier = user.Identifier
		id.IdentitySource = user.IdentitySource
	}
	ctx := identity.Set(req.Context(), id)
	ctx = authz.WithSubject(ctx, &authz.Subject{Identity: id, User: user})
	return req.WithContext(ctx)
}

func withMuxVars(req *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(req, vars)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

// errorBody is the JSON error shape.
type errorBody struct {
	Name    string   `json:"name"`
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	decodeBody(t, rec, &body)
	return body
}
