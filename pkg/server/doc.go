// Package server provides the HTTP server for the restoration tracker API.
//
// The Server struct holds the router, the database handle, one store per
// domain area and the collaborators handlers need (authenticator,
// authorizer, metrics, mailer, object store and download signer).
//
// # Server Setup
//
//	srv, err := server.NewServer(cfg, db)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	endpoints.RegisterAll(srv)
//	log.Fatal(srv.Start())
//
// Every API route lives below /api on srv.API. Requests pass through the
// metrics middleware, the access log, OpenAPI request validation and bearer
// token authentication before reaching a handler; per-route authorization
// is applied by the endpoints package.
package server
