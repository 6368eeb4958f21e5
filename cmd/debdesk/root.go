package debdesk

import (
	"os"
	"strings"

	"github.com/bashfulrobot/debdesk/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time via -ldflags
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "debdesk",
	Short: "Provision an i3 desktop on Debian and Ubuntu",
	Long: `Debdesk turns a minimal Debian or Ubuntu install into a tiling window manager
desktop: i3, Alacritty, zsh with oh-my-zsh and, when an NVIDIA GPU is present,
the proprietary driver and CUDA toolkit.

Running debdesk without a subcommand performs the installation. Every step is
safe to re-run; packages that are already installed are skipped and existing
configuration is backed up before it is replaced.`,
	Example: `  debdesk                           # Interactive install
  debdesk -y                        # Accept every default
  debdesk --config-only             # Only write configuration files
  debdesk --export-packages         # Write the package list and exit
  debdesk --dry-run --verbose       # Show what would happen`,
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInstall,
}

// NewRootCmd returns the root command for use with fang
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	// Install flags
	flags := rootCmd.Flags()
	flags.Bool("config-only", false, "only write configuration files, install nothing")
	flags.String("export-packages", "", "write the package list to a file and exit")
	flags.Lookup("export-packages").NoOptDefVal = config.DefaultExportPath
	flags.BoolP("non-interactive", "y", false, "accept every default without prompting")
	flags.Bool("dry-run", false, "log commands and file writes instead of performing them")
	flags.Bool("no-progress", false, "stream package manager output instead of a progress bar")
	flags.String("log-file", "", "installation log path (default ~/.local/state/debdesk/install.log)")

	// Bind flags to viper
	viper.BindPFlags(rootCmd.PersistentFlags())
	viper.BindPFlags(flags)
}

func initConfig() {
	// Use explicit config file if provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// viper's own search also matches an extensionless "debdesk", which
		// is the binary when it sits in the working directory or $HOME
		home, _ := os.UserHomeDir()
		if path := config.FindConfigFile(afero.NewOsFs(), config.SearchPaths(home)); path != "" {
			viper.SetConfigFile(path)
		}
	}

	// DEBDESK_NON_INTERACTIVE=true and friends
	viper.SetEnvPrefix("DEBDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config.SetVerbose(viper.GetBool("verbose"))
	config.SetNoColor(viper.GetBool("no-color"))
}

// modeFromFlags reads the run mode through viper so environment overrides
// apply
func modeFromFlags() config.Mode {
	return config.Mode{
		ConfigOnly:     viper.GetBool("config-only"),
		ExportPackages: viper.GetString("export-packages") != "",
		ExportPath:     viper.GetString("export-packages"),
		NonInteractive: viper.GetBool("non-interactive"),
		DryRun:         viper.GetBool("dry-run"),
		NoProgress:     viper.GetBool("no-progress"),
	}
}
