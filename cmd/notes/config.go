// ABOUTME: Config commands for inspecting and changing client settings.
// ABOUTME: These run without opening the token store.

package main

import (
	"fmt"

	"github.com/harper/notes/internal/config"
	"github.com/harper/notes/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Manage client configuration",
	Annotations: map[string]string{skipSetup: "true"},
}

var configSetURLCmd = &cobra.Command{
	Use:   "set-url <url>",
	Short: "Set the API base URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadFile()
		if err != nil {
			return err
		}
		c.APIURL = args[0]
		if err := c.Validate(); err != nil {
			return err
		}
		if err := config.SaveConfig(c); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("API URL set to "+c.APIURL))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadConfig()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(c)
		if err != nil {
			return err
		}
		source := config.ConfigPath()
		if !config.ConfigExists() {
			source += " (not found, using defaults)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", source, data)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetURLCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
