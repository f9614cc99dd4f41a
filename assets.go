// Package rideronboarding provides embedded assets for production builds.
package rideronboarding

import "embed"

// In dev mode assets are read from disk for hot reloading; otherwise they are served from these embedded filesystems.

//go:embed all:frontend/static
var StaticFS embed.FS

//go:embed all:frontend/templates
var TemplateFS embed.FS
