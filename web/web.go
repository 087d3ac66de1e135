// Package web holds the embedded HTML pages served by the portal.
package web

import "embed"

//go:embed templates/*.html
var TemplateFiles embed.FS
