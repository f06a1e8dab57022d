package preset

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_pool/internal/commands/cli/server"
	"github.com/andrei-cloud/go_pool/internal/config"
	"github.com/andrei-cloud/go_pool/internal/preset"
)

// NewPushCommand creates the push command.
func NewPushCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push FILE",
		Short: "Share a preset through redis",
		Long:  `Validate a preset file and store it in redis so other servers can list it in pool.shared_presets.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runPush,
	}

	cmd.Flags().String("name", "", "preset name (defaults to the file name)")

	return cmd
}

func runPush(cmd *cobra.Command, args []string) error {
	store := newStore(config.Get())
	if store == nil {
		return preset.ErrNoStore
	}

	doc, err := preset.LoadFile(args[0])
	if err != nil {
		return err
	}
	if name, _ := cmd.Flags().GetString("name"); name != "" {
		doc.Name = name
	}
	if err := store.Push(cmd.Context(), doc); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pushed preset %q\n", doc.Name)

	return nil
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [NAME]",
		Short: "Print shared presets",
		Long:  `Print a shared preset as YAML, or the names of all shared presets when no name is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	store := newStore(config.Get())
	if store == nil {
		return preset.ErrNoStore
	}

	if len(args) == 0 {
		names, err := store.Names(cmd.Context())
		if err != nil {
			return err
		}
		for _, n := range names {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	}

	doc, err := store.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	data, err := preset.Encode(doc)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)

	return err
}

func newStore(cfg *config.Config) *preset.RedisStore {
	return server.NewRedisStore(cfg)
}
