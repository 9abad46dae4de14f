// Package web holds the browser page served at "/".
package web

import (
	"embed"
	"io/fs"
)

//go:embed index.html static
var Assets embed.FS

// Static is the static/ directory rooted so that "app.js" resolves directly.
func Static() (fs.FS, error) {
	return fs.Sub(Assets, "static")
}
