package assets

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigTree(t *testing.T) {
	entries, err := fs.ReadDir(ConfigTree(), ".")
	require.NoError(t, err)

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	assert.ElementsMatch(t, []string{"dunst", "i3", "picom", "rofi"}, dirs)

	data, err := fs.ReadFile(ConfigTree(), "i3/config")
	require.NoError(t, err)
	assert.Contains(t, string(data), "set $mod Mod4")
}

func TestTemplate(t *testing.T) {
	for _, name := range []string{"i3status.tmpl", "zshrc.tmpl"} {
		src, err := Template(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, src)
	}

	_, err := Template("missing.tmpl")
	assert.Error(t, err)
}
