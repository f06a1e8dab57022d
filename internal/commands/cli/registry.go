// Package cli provides centralized command registration.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_pool/internal/commands/cli/preset"
	"github.com/andrei-cloud/go_pool/internal/commands/cli/server"
	"github.com/andrei-cloud/go_pool/internal/commands/cli/watch"
)

// RegisterCommands registers all root commands.
func RegisterCommands(root *cobra.Command) error {
	root.AddCommand(server.NewServeCommand())
	root.AddCommand(preset.NewPresetCommand())
	root.AddCommand(watch.NewWatchCommand())
	root.AddCommand(NewVersionCommand())

	return nil
}
