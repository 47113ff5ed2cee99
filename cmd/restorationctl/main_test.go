package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcgov/restoration-tracker/pkg/model"
)

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"server", "db", "configuration", "wait", "user", "codes"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	sub := map[string]bool{}
	for _, c := range dbCmd.Commands() {
		sub[c.Name()] = true
	}
	assert.True(t, sub["migrate"])
	assert.True(t, sub["down"])
	assert.True(t, sub["status"])
}

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)

	steps, err = parseSteps([]string{"3"})
	require.NoError(t, err)
	assert.Equal(t, 3, steps)

	_, err = parseSteps([]string{"0"})
	assert.Error(t, err)
	_, err = parseSteps([]string{"many"})
	assert.Error(t, err)
}

func TestShowConfiguration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "restoration.yml"), []byte("port: \"7000\"\nsigned_url_secret: hunter2\n"), 0o600))
	t.Setenv("RESTORATION_CONFIG_PATH", dir)
	t.Setenv("PORT", "")

	out, err := showConfiguration("text")
	require.NoError(t, err)
	assert.Contains(t, out, "7000")
	assert.NotContains(t, out, "hunter2")

	out, err = showConfiguration("json")
	require.NoError(t, err)
	assert.Contains(t, out, `"port"`)

	_, err = showConfiguration("yaml")
	assert.Error(t, err)
}

func newUserCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	addUserFlags(cmd)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestNewUserFromFlags(t *testing.T) {
	u, err := newUserFromFlags(newUserCmd(t, "--identifier", "jdoe", "--guid", "ABC", "--role", "1", "--source", "idir"))
	require.NoError(t, err)
	assert.Equal(t, model.NewUser{
		IdentitySource: model.IdentitySourceIDIR,
		UserIdentifier: "jdoe",
		UserGUID:       "ABC",
		RoleID:         1,
	}, u)

	_, err = newUserFromFlags(newUserCmd(t))
	assert.ErrorContains(t, err, "--identifier")

	_, err = newUserFromFlags(newUserCmd(t, "--identifier", "jdoe", "--source", "GITHUB"))
	assert.ErrorContains(t, err, "identity source")

	_, err = newUserFromFlags(newUserCmd(t, "--identifier", "jdoe", "--role", "9"))
	assert.ErrorContains(t, err, "system role")
}

func TestWaitForServer(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := waitForServer(context.Background(), srv.URL, 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestWaitForServerGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := waitForServer(context.Background(), srv.URL, 2, time.Millisecond)
	assert.ErrorContains(t, err, "503")
}

func TestHealthURL(t *testing.T) {
	assert.Equal(t, "http://localhost:6100/api/health", healthURL(6100))
}

func TestParseCodesFile(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "codes.yml")
	require.NoError(t, os.WriteFile(valid, []byte("regions: [Kootenay-Boundary]\ntreatment_types:\n  - name: Seeding\n"), 0o600))
	doc, err := parseCodesFile(valid)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kootenay-Boundary"}, doc.Regions)
	require.Len(t, doc.TreatmentTypes, 1)
	assert.Equal(t, "Seeding", doc.TreatmentTypes[0].Name)

	invalid := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(invalid, []byte("regions: [\"\"]\n"), 0o600))
	_, err = parseCodesFile(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regions[0]")

	_, err = parseCodesFile(filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open codes file")
}
