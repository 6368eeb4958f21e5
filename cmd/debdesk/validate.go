package debdesk

import (
	"fmt"

	"github.com/bashfulrobot/debdesk/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var validateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Long: `Validate the configuration file for unknown keys, invalid package names,
unknown group labels and out-of-range terminal settings without making any
changes to the system.`,
	Example: `  debdesk validate                  # Validate the config found in the search path
  debdesk validate my-desk.yaml     # Validate a specific file`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			viper.SetConfigFile(args[0])
		}

		cfg, path, err := config.Load()
		if err != nil {
			return err
		}
		if path == "" {
			config.Warning("No config file found, built-in defaults apply")
			return nil
		}

		config.Info("Validating configuration", "path", path)
		result := config.Validate(cfg, path)
		if result.HasErrors() {
			return &config.ValidationFailedError{Result: result}
		}
		if len(result.Warnings) > 0 {
			fmt.Fprint(cmd.OutOrStdout(), config.FormatValidationResultSimple(result))
		}

		config.Success("Configuration is valid")
		config.Debug("Package overrides", "extra_groups", len(cfg.Packages.Extra), "skipped_groups", len(cfg.Packages.Skip))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
