// Package web embeds the HTML templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var content embed.FS

var (
	// Static holds the stylesheet and scripts served under /static/.
	Static = sub("static")

	// Templates holds layout.html and the page templates.
	Templates = sub("templates")
)

func sub(dir string) fs.FS {
	f, err := fs.Sub(content, dir)
	if err != nil {
		panic("embedded directory " + dir + ": " + err.Error())
	}
	return f
}
