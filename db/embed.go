// Package db holds the versioned SQL migrations for the restoration tracker
// schema, embedded so the binary can migrate without the source tree.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
