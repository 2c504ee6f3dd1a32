// Package migrations embeds the server's Postgres schema for goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
