// Package migrations embeds the versioned postgres schema so cmd/migrate
// runs without a migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
