// Package preset provides preset management commands.
package preset

import (
	"github.com/spf13/cobra"
)

// NewPresetCommand creates the main preset command group.
func NewPresetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Preset management commands",
		Long:  `Commands for validating, listing and sharing pool presets.`,
	}

	// Add subcommands.
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewPushCommand())
	cmd.AddCommand(NewShowCommand())

	return cmd
}
