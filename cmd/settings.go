package cmd

import (
	"fmt"
	"strings"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-foldergen/cmd/config"
)

var configUlog = grovelogging.NewUnifiedLogger("grove-foldergen.cmd.config")

func NewConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration in effect after reading the config file,
FOLDERGEN_* environment variables and command line flags.

The output is valid YAML and can be saved as
$HOME/.config/foldergen/config.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Current()
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("failed to marshal configuration: %w", err)
			}

			configUlog.Info("Configuration").
				Field("config_file", settings.ConfigFile).
				Field("data_dir", settings.DataDir).
				Pretty(strings.TrimRight(string(data), "\n")).
				PrettyOnly().
				Emit()
			return nil
		},
	}
}
