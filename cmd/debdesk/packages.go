package debdesk

import (
	"fmt"
	"io"
	"time"

	"github.com/bashfulrobot/debdesk/internal/config"
	"github.com/bashfulrobot/debdesk/internal/pkg"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List package groups and their installed state",
	Long: `List the package groups debdesk would install, how many of their packages are
already present according to dpkg, and when each group was last applied.

Preferences come from the last run recorded in the state file. Before the
first run the non-interactive defaults are used.`,
	Args: cobra.NoArgs,
	RunE: runPackages,
}

func init() {
	rootCmd.AddCommand(packagesCmd)
}

var (
	groupStyle = lipgloss.NewStyle().Bold(true)
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	todoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

func runPackages(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadValidConfig()
	if err != nil {
		return err
	}

	logger := config.SlogLogger()
	fs := afero.NewOsFs()
	runner := pkg.NewExecRunner(logger, false)
	stateManager := pkg.NewStateManager(logger, fs)
	state, err := stateManager.LoadState()
	if err != nil {
		return err
	}

	prefs := state.Preferences
	if state.LastRunID == "" {
		osInfo, err := pkg.DetectOS(ctx, fs, runner)
		if err != nil {
			return err
		}
		prefs = config.DefaultPreferences(pkg.NewGPUDetector(runner).Detect(ctx, osInfo))
	}

	groups := config.ResolveGroups(prefs, cfg)
	apt := pkg.NewAptManager(logger, runner, nil, nil)
	if err := apt.CheckAvailable(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, group := range groups {
		installed, missing, err := pkg.Partition(ctx, apt, group.Packages)
		if err != nil {
			return err
		}
		writeGroupLine(out, group, len(installed), state.Groups[group.Label])
		if len(missing) > 0 {
			fmt.Fprintf(out, "    %s %v\n", mutedStyle.Render("missing:"), missing)
		}
	}

	stale, err := stateManager.GroupsNoLongerSelected(groups)
	if err != nil {
		return err
	}
	if len(stale) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, groupStyle.Render("Previously applied, no longer selected:"))
		for _, g := range stale {
			fmt.Fprintf(out, "  %s %s\n", g.Label, mutedStyle.Render(lastApplied(g)))
		}
	}
	return nil
}

func writeGroupLine(w io.Writer, group config.PackageGroup, installed int, recorded pkg.GroupState) {
	counts := fmt.Sprintf("%d/%d", installed, len(group.Packages))
	if installed == len(group.Packages) {
		counts = doneStyle.Render(counts)
	} else {
		counts = todoStyle.Render(counts)
	}
	fmt.Fprintf(w, "%s %s %s  %s\n",
		groupStyle.Width(16).Render(group.Label),
		mutedStyle.Width(12).Render(group.Policy.String()),
		counts,
		mutedStyle.Render(lastApplied(recorded)))
}

func lastApplied(g pkg.GroupState) string {
	if g.LastApplied.IsZero() {
		return "never applied"
	}
	return "applied " + g.LastApplied.Local().Format(time.DateTime)
}
