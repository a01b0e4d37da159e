// Package migrations embeds the SQL migration files for all supported
// database backends. Use fs.Sub to select the dialect directory.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
