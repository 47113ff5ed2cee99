// Command restorationctl runs the habitat restoration tracker API.
//
// The tracker records restoration projects, their participants, spatial
// treatment units and attachments, and publishes a read-only view of
// published projects to the public.
//
// # Quick Start
//
//	# Apply the database schema and seed code tables
//	restorationctl db migrate
//
//	# Register the first System Administrator
//	restorationctl user add --source IDIR --identifier jdoe --guid 3F9A...
//
//	# Load regional code values
//	restorationctl codes load codes.yml
//
//	# Start the API
//	restorationctl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - PORT: API listen port (default: 6100)
//   - KEYCLOAK_ISSUER, KEYCLOAK_JWKS_URI: bearer token verification
//   - OBJECT_STORE_PATH: attachment storage root
//   - SIGNED_URL_SECRET: key for attachment download links
//   - LOG_LEVEL: debug, info, warn or error
package main
