// Package migrations embeds the development backend schema.
package migrations

import "embed"

// FS holds the *.sql migrations
//
//go:embed *.sql
var FS embed.FS
