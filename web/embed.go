package web

import "embed"

// TemplatesFS embeds the HTML templates rendered by the page handlers.
//
//go:embed templates/*.html
var TemplatesFS embed.FS
