// Package migrations embeds the schema for the sqlite key/value store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
