package debdesk

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bashfulrobot/debdesk/internal/config"
	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manpageCmd = &cobra.Command{
	Use:   "manpage [dir]",
	Short: "Generate the debdesk(1) man page",
	Long: `Write debdesk.1 into dir, or print it to stdout when no directory is given.
Install it with: debdesk manpage /usr/local/share/man/man1`,
	Args:   cobra.MaximumNArgs(1),
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := mcobra.NewManPage(1, cmd.Root())
		if err != nil {
			return fmt.Errorf("failed to build man page: %w", err)
		}
		page = page.WithSection("Files", "~/.config/debdesk/state.json\n  Record of the last run.\n\n"+
			"~/.local/state/debdesk/install.log\n  Installation log, appended on every run.")
		out := page.Build(roff.NewDocument())

		if len(args) == 0 {
			_, err := fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		}

		path := filepath.Join(args[0], "debdesk.1")
		if err := os.WriteFile(path, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		config.Success("Man page written", "path", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(manpageCmd)
}
