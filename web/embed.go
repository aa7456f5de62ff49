// Package web embeds the page templates and static assets served by the
// dashboard.
package web

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the stylesheet and scripts rooted at static/.
func StaticFS() (fs.FS, error) {
	return subtree("static")
}

// TemplatesFS returns the HTML templates rooted at templates/.
func TemplatesFS() (fs.FS, error) {
	return subtree("templates")
}

func subtree(dir string) (fs.FS, error) {
	sub, err := fs.Sub(content, dir)
	if err != nil {
		return nil, fmt.Errorf("opening embedded %s: %w", dir, err)
	}
	return sub, nil
}
