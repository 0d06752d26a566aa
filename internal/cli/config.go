package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// configCommand creates the settings file command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or reset the settings file",
		Long: `Show or reset the settings file.

The settings file holds default generator options ([generate], written by
'scatter generate --save') and server settings ([server]: addr, store,
cache).`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			return toml.NewEncoder(c.Out).Encode(s)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := settingsPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Delete the settings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resetSettings()
			if err != nil {
				return err
			}
			printSuccess("Settings reset")
			printDetail("File: %s", path)
			return nil
		},
	})

	return cmd
}
