// Package densitymap embeds the SQL migrations applied by the migrate command.
package densitymap

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
