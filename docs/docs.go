// Package docs holds the OpenAPI description served at /docs/swagger.yaml.
package docs

import "embed"

// FS contains swagger.yaml.
//
//go:embed swagger.yaml
var FS embed.FS
