// Package web carries the presentation assets compiled into the
// binary: the layout and page templates and the static files served
// under /static/.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var templateFS embed.FS

//go:embed all:static
var staticFS embed.FS

// TemplateFS holds the layout and page templates the view parses at
// startup.
var TemplateFS fs.FS = templateFS

// StaticFS holds the stylesheet and client script behind the /static/
// file server.
var StaticFS fs.FS = staticFS
