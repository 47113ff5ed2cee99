package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/bcgov/restoration-tracker/pkg/model"
	gormstore "github.com/bcgov/restoration-tracker/pkg/server/store/gorm"
)

// System role ids as seeded by the migrations.
const (
	roleSystemAdmin    = 1
	roleProjectCreator = 2
)

var placeholder = regexp.MustCompile(`\{(guid:)?([A-Za-z0-9_]+)\}`)

// StepsContext holds state shared between the steps of one scenario.
type StepsContext struct {
	tc           *TestContext
	token        string
	response     *http.Response
	responseBody []byte
	saved        map[string]string
}

func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc, saved: make(map[string]string)}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the restoration API is running$`, s.theAPIIsRunning)
	sc.Step(`^a system administrator "([^"]*)"$`, s.aSystemAdministrator)
	sc.Step(`^a project creator "([^"]*)"$`, s.aProjectCreator)
	sc.Step(`^a registered user "([^"]*)"$`, s.aRegisteredUser)

	sc.Step(`^I am signed in as "([^"]*)"$`, s.iAmSignedInAs)
	sc.Step(`^I am not signed in$`, s.iAmNotSignedIn)

	sc.Step(`^I send a (GET|DELETE) request to "([^"]*)"$`, s.iSendARequest)
	sc.Step(`^I send a (POST|PUT) request to "([^"]*)" with body:$`, s.iSendARequestWithBody)
	sc.Step(`^I upload "([^"]*)" to "([^"]*)" with content:$`, s.iUploadWithContent)
	sc.Step(`^I download the saved URL "([^"]*)"$`, s.iDownloadTheSavedURL)

	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, s.theResponseShouldContain)
	sc.Step(`^the response should not contain "([^"]*)"$`, s.theResponseShouldNotContain)
	sc.Step(`^the response body should be "([^"]*)"$`, s.theResponseBodyShouldBe)
	sc.Step(`^I save the JSON field "([^"]*)" as "([^"]*)"$`, s.iSaveTheJSONField)
	sc.Step(`^an audit event "([^"]*)" should be recorded for "([^"]*)"$`, s.anAuditEventShouldBeRecorded)
}

func (s *StepsContext) theAPIIsRunning() error {
	return nil
}

func (s *StepsContext) registerUser(username string, roleID int) error {
	_, err := gormstore.NewUsersStore(s.tc.DB).AddSystemUser(context.Background(), model.NewUser{
		IdentitySource: model.IdentitySourceIDIR,
		UserIdentifier: strings.ToLower(username),
		UserGUID:       GUID(username),
		RoleID:         roleID,
	}, 0)
	return err
}

func (s *StepsContext) aSystemAdministrator(username string) error {
	return s.registerUser(username, roleSystemAdmin)
}

func (s *StepsContext) aProjectCreator(username string) error {
	return s.registerUser(username, roleProjectCreator)
}

func (s *StepsContext) aRegisteredUser(username string) error {
	return s.registerUser(username, 0)
}

func (s *StepsContext) iAmSignedInAs(username string) error {
	token, err := s.tc.Realm.Token(username)
	if err != nil {
		return err
	}
	s.token = token
	return nil
}

func (s *StepsContext) iAmNotSignedIn() error {
	s.token = ""
	return nil
}

// expand replaces {name} with a saved value and {guid:user} with a user's guid.
func (s *StepsContext) expand(text string) (string, error) {
	var missing string
	out := placeholder.ReplaceAllStringFunc(text, func(m string) string {
		parts := placeholder.FindStringSubmatch(m)
		if parts[1] != "" {
			return GUID(parts[2])
		}
		v, ok := s.saved[parts[2]]
		if !ok {
			missing = parts[2]
		}
		return v
	})
	if missing != "" {
		return "", fmt.Errorf("nothing saved as %q", missing)
	}
	return out, nil
}

func (s *StepsContext) do(method, path, contentType string, body io.Reader) error {
	path, err := s.expand(path)
	if err != nil {
		return err
	}
	target := path
	if !strings.HasPrefix(path, "http") {
		target = s.tc.ServerURL + path
	}

	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = s.response.Body.Close() }()
	s.responseBody, err = io.ReadAll(s.response.Body)
	return err
}

func (s *StepsContext) iSendARequest(method, path string) error {
	return s.do(method, path, "", nil)
}

func (s *StepsContext) iSendARequestWithBody(method, path string, body *godog.DocString) error {
	content, err := s.expand(body.Content)
	if err != nil {
		return err
	}
	return s.do(method, path, "application/json", strings.NewReader(content))
}

func (s *StepsContext) iUploadWithContent(fileName, path string, content *godog.DocString) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("media", fileName)
	if err != nil {
		return err
	}
	if _, err := part.Write([]byte(content.Content)); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}
	return s.do(http.MethodPost, path, mw.FormDataContentType(), &buf)
}

func (s *StepsContext) iDownloadTheSavedURL(name string) error {
	url, ok := s.saved[name]
	if !ok {
		return fmt.Errorf("nothing saved as %q", name)
	}
	token := s.token
	s.token = ""
	defer func() { s.token = token }()
	return s.do(http.MethodGet, url, "", nil)
}

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no request was sent")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseShouldContain(text string) error {
	if !strings.Contains(string(s.responseBody), text) {
		return fmt.Errorf("expected response to contain %q, got %s", text, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseShouldNotContain(text string) error {
	if strings.Contains(string(s.responseBody), text) {
		return fmt.Errorf("expected response not to contain %q, got %s", text, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseBodyShouldBe(body string) error {
	if strings.TrimSpace(string(s.responseBody)) != body {
		return fmt.Errorf("expected body %q, got %q", body, string(s.responseBody))
	}
	return nil
}

// iSaveTheJSONField stores a field of the JSON response. Dotted paths walk
// objects; numeric segments index arrays.
func (s *StepsContext) iSaveTheJSONField(path, name string) error {
	var v interface{}
	if err := json.Unmarshal(s.responseBody, &v); err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}
	for _, seg := range strings.Split(path, ".") {
		switch node := v.(type) {
		case map[string]interface{}:
			v = node[seg]
		case []interface{}:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return fmt.Errorf("no element %s in %s", seg, path)
			}
			v = node[i]
		default:
			return fmt.Errorf("cannot descend into %s of %s", seg, path)
		}
	}

	switch val := v.(type) {
	case nil:
		return fmt.Errorf("field %s not found in %s", path, string(s.responseBody))
	case string:
		s.saved[name] = val
	case float64:
		s.saved[name] = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		b, _ := json.Marshal(val)
		s.saved[name] = string(b)
	}
	return nil
}

func (s *StepsContext) anAuditEventShouldBeRecorded(event, username string) error {
	var count int64
	err := s.tc.DB.Raw(`SELECT count(*)
FROM audit_log a
JOIN system_user su ON su.system_user_id = a.system_user_id
WHERE a.event = ? AND lower(su.user_identifier) = lower(?)`, event, username).Scan(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no %s audit event recorded for %s", event, username)
	}
	return nil
}
