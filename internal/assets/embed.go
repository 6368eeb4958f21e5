// Package assets holds the configuration tree and templates compiled into
// the debdesk binary.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed config
var configTree embed.FS

//go:embed templates/*.tmpl
var templates embed.FS

// ConfigTree returns the bundled ~/.config tree. Each top-level directory
// (i3, picom, rofi, dunst) is materialized as a unit.
func ConfigTree() fs.FS {
	sub, err := fs.Sub(configTree, "config")
	if err != nil {
		panic(err)
	}
	return sub
}

// Template returns the named template source, e.g. "zshrc.tmpl".
func Template(name string) (string, error) {
	data, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
