package integration

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/bcgov/restoration-tracker/pkg/audit"
	"github.com/bcgov/restoration-tracker/pkg/config"
	"github.com/bcgov/restoration-tracker/pkg/db"
	"github.com/bcgov/restoration-tracker/pkg/server"
	"github.com/bcgov/restoration-tracker/pkg/server/endpoints"
)

// postgisImage is overridable with POSTGIS_IMAGE.
const postgisImage = "postgis/postgis:16-3.4-alpine"

// TestContext holds the resources shared by every scenario.
type TestContext struct {
	DB          *gorm.DB
	Container   testcontainers.Container
	DatabaseURL string
	ServerURL   string
	Realm       *Realm
	HTTPClient  *http.Client

	server *httptest.Server
	audit  *audit.Store
}

// NewTestContext starts PostGIS, applies the embedded migrations and runs the
// API in-process against a fake Keycloak realm.
func NewTestContext(ctx context.Context, objectStorePath string) (*TestContext, error) {
	image := postgisImage
	if v := os.Getenv("POSTGIS_IMAGE"); v != "" {
		image = v
	}

	pgContainer, err := tcpostgres.Run(ctx,
		image,
		tcpostgres.WithDatabase("restoration_test"),
		tcpostgres.WithUsername("restoration"),
		tcpostgres.WithPassword("restoration"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgis container: %w", err)
	}

	tc := &TestContext{Container: pgContainer, HTTPClient: &http.Client{Timeout: 10 * time.Second}}

	tc.DatabaseURL, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	version, err := db.Migrator{URL: tc.DatabaseURL}.Up()
	if err != nil {
		tc.Close(ctx)
		return nil, err
	}
	log.Printf("Migrated test database to version %d", version)

	tc.DB, err = db.Connect(db.Config{URL: tc.DatabaseURL})
	if err != nil {
		tc.Close(ctx)
		return nil, err
	}

	tc.audit, err = audit.NewStore(tc.DatabaseURL)
	if err != nil {
		tc.Close(ctx)
		return nil, err
	}
	audit.SetStore(tc.audit)

	tc.Realm, err = NewRealm()
	if err != nil {
		tc.Close(ctx)
		return nil, err
	}

	// Signed download links must point at this listener, so reserve it
	// before building the server.
	tc.server = httptest.NewUnstartedServer(nil)
	tc.ServerURL = "http://" + tc.server.Listener.Addr().String()

	cfg := &config.Config{
		DatabaseURL:         tc.DatabaseURL,
		BindAddress:         "127.0.0.1",
		Port:                "0",
		LogLevel:            "warn",
		KeycloakIssuer:      realmIssuer,
		KeycloakJWKSURI:     tc.Realm.JWKSURI(),
		KeycloakAudience:    realmAudience,
		ObjectStorePath:     objectStorePath,
		AttachmentMaxBytes:  1 << 20,
		SignedURLSecret:     "integration-secret",
		SignedURLTTLSeconds: 60,
		APIListLimitMax:     100,
		AdminEmail:          "admin@example.com",
		AppHost:             tc.ServerURL,
	}

	s, err := server.NewServer(cfg, tc.DB)
	if err != nil {
		tc.Close(ctx)
		return nil, err
	}
	if err := endpoints.RegisterAll(s); err != nil {
		tc.Close(ctx)
		return nil, err
	}
	tc.server.Config.Handler = s.Handler()
	tc.server.Start()

	if err := tc.waitForHealth(ctx); err != nil {
		tc.Close(ctx)
		return nil, err
	}
	return tc, nil
}

func (tc *TestContext) waitForHealth(ctx context.Context) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(200*time.Millisecond), 50), ctx)
	return backoff.Retry(func() error {
		resp, err := tc.HTTPClient.Get(tc.ServerURL + "/api/health")
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("health returned %d", resp.StatusCode)
		}
		return nil
	}, policy)
}

// Close releases everything NewTestContext started.
func (tc *TestContext) Close(ctx context.Context) {
	if tc.server != nil {
		tc.server.Close()
	}
	if tc.Realm != nil {
		tc.Realm.Close()
	}
	if tc.audit != nil {
		audit.SetStore(nil)
		_ = tc.audit.Close()
	}
	if tc.DB != nil {
		if sqlDB, err := tc.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}
