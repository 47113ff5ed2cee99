package endpoints

import (
	"fmt"

	"github.com/bcgov/restoration-tracker/pkg/objectstore"
	"github.com/bcgov/restoration-tracker/pkg/server"
	"github.com/bcgov/restoration-tracker/pkg/server/middleware"
	"github.com/bcgov/restoration-tracker/pkg/server/openapi"
)

// PublicPaths skip bearer token authentication. Paths ending in "/" are
// prefixes.
var PublicPaths = []string{
	server.APIPrefix + "/health",
	server.APIPrefix + "/api-docs",
	server.APIPrefix + "/codes",
	server.APIPrefix + "/public/",
	objectstore.DownloadPath,
}

// RegisterAll installs the API middleware chain and registers every
// endpoint on the server.
func RegisterAll(s *server.Server) error {
	validator, err := openapi.NewValidator()
	if err != nil {
		return fmt.Errorf("failed to load request validator: %w", err)
	}
	authn := middleware.NewAuthentication(s.Authenticator, s.Config.IsTrustedProxy).
		Public(PublicPaths...)

	// Middlewares run in order: validation, then authentication.
	s.API.Use(validator.Middleware, authn.Middleware)

	RegisterStatusEndpoints(s)
	RegisterCodesEndpoints(s)
	RegisterActivityEndpoints(s)
	RegisterUserEndpoints(s)
	RegisterProjectEndpoints(s)
	RegisterParticipantEndpoints(s)
	RegisterAttachmentEndpoints(s)
	RegisterTreatmentEndpoints(s)
	RegisterSearchEndpoints(s)
	RegisterDraftEndpoints(s)
	return nil
}
