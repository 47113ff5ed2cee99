package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bcgov/restoration-tracker/pkg/model"
)

func fastClient(url string) *GCNotify {
	return New(Config{
		APIURL:          url,
		APIKey:          "secret-key",
		InitialInterval: time.Millisecond,
		MaxElapsedTime:  time.Second,
	})
}

func TestSendEmail(t *testing.T) {
	var got emailRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/notifications/email", r.URL.Path)
		assert.Equal(t, "ApiKey-v1 secret-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	err := fastClient(server.URL+"/").SendEmail(context.Background(), Email{
		To:              "admin@example.com",
		TemplateID:      "tpl-1",
		Personalisation: map[string]any{"name": "Jane"},
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", got.EmailAddress)
	assert.Equal(t, "tpl-1", got.TemplateID)
	assert.Equal(t, "Jane", got.Personalisation["name"])
}

func TestSendEmailRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	err := fastClient(server.URL).SendEmail(context.Background(), Email{To: "a@b.c", TemplateID: "t"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSendEmailDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad template"}]}`))
	}))
	defer server.Close()

	err := fastClient(server.URL).SendEmail(context.Background(), Email{To: "a@b.c", TemplateID: "t"})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "bad template")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSendEmailRequiresRecipient(t *testing.T) {
	err := fastClient("http://unused").SendEmail(context.Background(), Email{TemplateID: "t"})
	assert.Error(t, err)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendEmail(ctx context.Context, e Email) error {
	return m.Called(ctx, e).Error(0)
}

func TestMailer(t *testing.T) {
	n := &mockNotifier{}
	var observed []string
	m := &Mailer{
		Notifier:   n,
		Templates:  Templates{RequestAccess: "req", AccessApproved: "ok"},
		AdminEmail: "admin@example.com",
		AppHost:    "https://restoration.example.com",
		Observe: func(template string, err error) {
			observed = append(observed, template)
		},
	}

	n.On("SendEmail", mock.Anything, mock.MatchedBy(func(e Email) bool {
		return e.To == "admin@example.com" && e.TemplateID == "req" && e.Personalisation["username"] == "jdoe"
	})).Return(nil).Once()
	n.On("SendEmail", mock.Anything, mock.MatchedBy(func(e Email) bool {
		return e.To == "jdoe@example.com" && e.TemplateID == "ok"
	})).Return(errors.New("unavailable")).Once()

	m.AccessRequested(context.Background(), model.AccessRequest{Name: "Jane Doe", Username: "jdoe"})
	m.AccessApproved(context.Background(), "jdoe@example.com", "Jane Doe")
	m.AccessApproved(context.Background(), "", "nobody")

	n.AssertExpectations(t)
	assert.Equal(t, []string{"req", "ok"}, observed)
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.SendEmail(context.Background(), Email{To: "x"}))
}
