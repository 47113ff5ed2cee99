// Package config provides configuration management for the restoration
// tracker API.
//
// Configuration is loaded from a YAML file and then overridden by
// environment variables. Every attribute remembers where its value came
// from, which `restorationctl configuration show` prints.
//
// # Configuration Sources
//
//   - $RESTORATION_CONFIG_PATH/restoration.yml (default /etc/restoration-tracker)
//   - Environment variables (take precedence)
//
// # Key Configuration Options
//
//   - DATABASE_URL: PostgreSQL connection string
//   - KEYCLOAK_ISSUER, KEYCLOAK_JWKS_URI: bearer token verification
//   - OBJECT_STORE_PATH: attachment storage root
//   - GCNOTIFY_API_URL, GCNOTIFY_API_KEY: email notifications
//   - LOG_LEVEL: debug, info, warn or error
//   - PORT: Server listen port
package config
