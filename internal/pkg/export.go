package pkg

import (
	"bufio"
	"fmt"
	"io"

	"github.com/bashfulrobot/debdesk/internal/config"
	"github.com/spf13/afero"
)

// WritePackageList writes groups as "# <label> (<policy>)" headers, each
// followed by one package per line
func WritePackageList(w io.Writer, groups []config.PackageGroup) error {
	bw := bufio.NewWriter(w)
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		fmt.Fprintf(bw, "# %s (%s)\n", g.Label, g.Policy)
		for _, p := range g.Packages {
			fmt.Fprintln(bw, p)
		}
	}
	return bw.Flush()
}

// ExportPackageList writes the package list to path on fs
func ExportPackageList(fs afero.Fs, path string, groups []config.PackageGroup) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WritePackageList(f, groups); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
