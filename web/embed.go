// Package web embeds the page templates and browser assets.
package web

import "embed"

// Templates holds the html/template sources
//
//go:embed templates/*.html
var Templates embed.FS

// Static holds the CSS and JavaScript served under /static
//
//go:embed static
var Static embed.FS
