// Package config provides CLI commands for specgate configuration management.
package config

import (
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/specgate/internal/cli/shared"
)

// Register adds the configuration commands to the root command.
// This function is called from the root CLI package during initialization.
func Register(rootCmd *cobra.Command) {
	configCmd.GroupID = shared.GroupConfiguration
	rootCmd.AddCommand(configCmd)

	doctorCmd.GroupID = shared.GroupConfiguration
	rootCmd.AddCommand(doctorCmd)
}
