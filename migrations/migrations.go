// Package migrations embebe los scripts SQL aplicados con goose al arrancar.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
