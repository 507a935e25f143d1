package config

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/specgate/internal/cli/shared"
	cfgpkg "github.com/ariel-frischer/specgate/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect specgate configuration",
	Long: `Inspect specgate configuration.

Values are merged from defaults, the global config (~/.specgate/config.json),
the project config (--config) and SPECGATE_* environment variables, in
increasing priority.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current effective configuration",
	Long: `Display the current effective configuration values.

Shows the merged result of defaults, global config, project config, and
environment variables. Use --json to change the output format.`,
	Example: `  # Show configuration in YAML format (default)
  specgate config show

  # Show configuration in JSON format
  specgate config show --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		useJSON, _ := cmd.Flags().GetBool("json")
		return runConfigShow(configPath, useJSON, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List all available configuration keys",
	Long:  `Display all valid configuration keys with their types and descriptions.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runConfigKeys(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configKeysCmd)

	configShowCmd.Flags().Bool("json", false, "Output in JSON format")
}

func runConfigShow(configPath string, useJSON bool, out, errOut io.Writer) error {
	cfg, err := cfgpkg.Load(configPath)
	if err != nil {
		fmt.Fprintf(errOut, "Error loading config: %v\n", err)
		return shared.NewExitError(shared.ExitInvalidArguments)
	}

	fmt.Fprintf(out, "# Configuration Sources\n")
	fmt.Fprintf(out, "# Global config:  %s\n", cfgpkg.GlobalConfigPath())
	fmt.Fprintf(out, "# Project config: %s\n", configPath)
	fmt.Fprintf(out, "\n")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if useJSON {
		fmt.Fprintln(out, string(data))
		return nil
	}

	// Round-trip through a map so YAML output uses the config key names.
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	yamlData, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	fmt.Fprint(out, string(yamlData))
	return nil
}

func runConfigKeys(out io.Writer) {
	fmt.Fprintln(out, "Available configuration keys:")
	fmt.Fprintln(out)

	for _, key := range cfgpkg.SortedKeys() {
		schema := cfgpkg.KnownKeys[key]
		typeInfo := schema.Type.String()
		if schema.Type == cfgpkg.TypeEnum {
			typeInfo = fmt.Sprintf("enum (%s)", strings.Join(schema.AllowedValues, ", "))
		}
		fmt.Fprintf(out, "  %-20s %s\n", key, typeInfo)
		fmt.Fprintf(out, "    %s\n", schema.Description)
		fmt.Fprintln(out)
	}
}
