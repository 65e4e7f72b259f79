package cmd

import (
	"fmt"
	"strings"

	"github.com/PolarWolf314/jupwallet/internal/ui"
	"github.com/PolarWolf314/jupwallet/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	configInitForce bool
	configShowJSON  bool
)

// ConfigCmd is the parent of the config subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage jupwallet configuration",
	Long: `The config file lives at <data-dir>/config.toml and selects the record
store driver, the session key size and the default log level.

Examples:
  jupwallet config init             # Write a default config
  jupwallet config show             # Print the effective config
  jupwallet config show --json      # Machine-readable output`,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")

	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configShowCmd)
}

func resetConfigCommandState() {
	configInitForce = false
	configShowJSON = false
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Writes a default config file. An existing file is kept unless --force is
given. Overwriting keeps the installation id.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config init command")

		result, err := workflows.ConfigInit(dataDir, configInitForce)
		if err != nil {
			return printError(err)
		}

		if !result.Written {
			fmt.Println(ui.WarningLine("Config already exists at %s", ui.Path.Sprint(result.Settings.ConfigPath)))
			fmt.Println(ui.HintLine("Use %s to overwrite it", ui.Flag.Sprint("--force")))
			return nil
		}
		fmt.Println(ui.SuccessLine("Wrote config to %s", ui.Path.Sprint(result.Settings.ConfigPath)))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config show command")

		result, err := workflows.ConfigShow(dataDir)
		if err != nil {
			return printError(err)
		}

		if configShowJSON {
			cfg := result.Config
			return printJSON(map[string]any{
				"dataDir":    result.Settings.DataDir,
				"configPath": result.Settings.ConfigPath,
				"fromFile":   result.FromFile,
				"installation": map[string]any{
					"id":        cfg.Installation.ID,
					"createdAt": cfg.Installation.CreatedAt,
				},
				"database": map[string]any{
					"driver": cfg.Database.Driver,
					"path":   result.DatabasePath,
				},
				"security": map[string]any{
					"sessionKeyBytes": cfg.Security.SessionKeyBytes,
				},
				"logging": map[string]any{
					"verbose": cfg.Logging.Verbose,
					"debug":   cfg.Logging.Debug,
				},
			})
		}

		source := ui.Path.Sprint(result.Settings.ConfigPath)
		if !result.FromFile {
			source = "defaults " + ui.Muted.Sprint("no config file at "+result.Settings.ConfigPath)
		}
		fmt.Printf("# %s\n", source)
		fmt.Printf("# database: %s\n\n", result.DatabasePath)
		fmt.Println(strings.TrimRight(result.Rendered, "\n"))
		return nil
	},
}
