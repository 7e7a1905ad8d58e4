// Package web bundles the dashboard templates and static assets into the
// binary.
package web

import "embed"

var (
	// Templates holds layouts, pages and partials.
	//
	//go:embed templates/layouts/*.html templates/pages/*.html templates/partials/*.html
	Templates embed.FS

	// Static holds the stylesheet and the swap script served under /static.
	//
	//go:embed static/css/*.css static/js/*.js
	Static embed.FS
)
