package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/bcgov/restoration-tracker/pkg/authenticator"
	"github.com/bcgov/restoration-tracker/pkg/authenticator/keycloak"
	"github.com/bcgov/restoration-tracker/pkg/authz"
	"github.com/bcgov/restoration-tracker/pkg/config"
	"github.com/bcgov/restoration-tracker/pkg/metrics"
	"github.com/bcgov/restoration-tracker/pkg/notify"
	"github.com/bcgov/restoration-tracker/pkg/objectstore"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
	gormstore "github.com/bcgov/restoration-tracker/pkg/server/store/gorm"
)

// APIPrefix is the path prefix of every API route.
const APIPrefix = "/api"

type Server struct {
	Config *config.Config
	Router *mux.Router
	// API is the subrouter for APIPrefix
	API *mux.Router
	DB  *gorm.DB

	HealthStore       store.HealthStore
	UsersStore        store.UsersStore
	ActivitiesStore   store.ActivitiesStore
	ProjectsStore     store.ProjectsStore
	ParticipantsStore store.ParticipantsStore
	AttachmentsStore  store.AttachmentsStore
	TreatmentsStore   store.TreatmentsStore
	DraftsStore       store.DraftsStore
	CodesStore        store.CodesStore

	Authenticator authenticator.Authenticator
	Authorizer    *authz.Authorizer
	Metrics       *metrics.Metrics
	Mailer        *notify.Mailer
	Objects       objectstore.Store
	Signer        *objectstore.Signer

	srv *http.Server
}

// New creates a server with its router and metrics but no stores. Callers
// (and tests) fill in the collaborators they need.
func New(cfg *config.Config) *Server {
	router := mux.NewRouter().UseEncodedPath()
	m := metrics.New()
	router.Use(m.Middleware)

	srv := &http.Server{
		Handler:           handlers.LoggingHandler(os.Stdout, router),
		Addr:              cfg.Addr(),
		WriteTimeout:      60 * time.Second,
		ReadTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{
		Config:  cfg,
		Router:  router,
		API:     router.PathPrefix(APIPrefix).Subrouter(),
		Metrics: m,
		srv:     srv,
	}
}

// NewServer wires the GORM stores, Keycloak authentication, the attachment
// object store and GC Notify around db.
func NewServer(cfg *config.Config, db *gorm.DB) (*Server, error) {
	s := New(cfg)
	s.DB = db

	s.HealthStore = gormstore.NewHealthStore(db)
	s.UsersStore = gormstore.NewUsersStore(db)
	s.ActivitiesStore = gormstore.NewActivitiesStore(db)
	s.ProjectsStore = gormstore.NewProjectsStore(db)
	s.ParticipantsStore = gormstore.NewParticipantsStore(db)
	s.AttachmentsStore = gormstore.NewAttachmentsStore(db)
	s.TreatmentsStore = gormstore.NewTreatmentsStore(db)
	s.DraftsStore = gormstore.NewDraftsStore(db)
	s.CodesStore = gormstore.NewCodesStore(db)

	s.Authorizer = authz.NewAuthorizer(gormstore.NewAuthzStore(db))
	s.Authenticator = keycloak.New(keycloak.Config{
		Issuer:   cfg.KeycloakIssuer,
		JWKSURI:  cfg.KeycloakJWKSURI,
		Audience: cfg.KeycloakAudience,
	})

	objects, err := objectstore.NewFS(cfg.ObjectStorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open object store: %w", err)
	}
	s.Objects = objects

	signer, err := objectstore.NewSigner(cfg.SignedURLSecret, cfg.SignedURLTTL(), cfg.AppHost)
	if err != nil {
		return nil, fmt.Errorf("failed to create download signer: %w", err)
	}
	s.Signer = signer

	var notifier notify.Notifier = notify.Nop{}
	if cfg.NotificationsEnabled() {
		notifier = notify.New(notify.Config{
			APIURL: cfg.GCNotifyAPIURL,
			APIKey: cfg.GCNotifyAPIKey,
		})
	}
	s.Mailer = &notify.Mailer{
		Notifier: notifier,
		Templates: notify.Templates{
			RequestAccess:  cfg.GCNotifyRequestAccessTemplate,
			AccessApproved: cfg.GCNotifyAccessApprovedTemplate,
		},
		AdminEmail: cfg.AdminEmail,
		AppHost:    cfg.AppHost,
		Observe:    s.Metrics.ObserveNotification,
	}

	return s, nil
}

// Handler returns the root handler including the access log.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
