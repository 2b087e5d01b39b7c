package views

import "embed"

//go:embed templates/*.html
var viewsFS embed.FS
