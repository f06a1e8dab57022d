// Package watch provides a live view of a running pool server.
package watch

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_pool/internal/client"
	"github.com/andrei-cloud/go_pool/internal/config"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch pool occupancy",
		Long:  `Poll a running pool server for its occupancy and show it as a live table.`,
		RunE:  runWatch,
	}

	cmd.Flags().String("addr", "", "server address (defaults to server.host:server.port)")
	cmd.Flags().Duration("interval", time.Second, "poll interval")
	cmd.Flags().Bool("once", false, "print one snapshot and exit")

	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	// Disable logging for the interactive view.
	log.Logger = log.Logger.Level(zerolog.Disabled)

	cfg := config.Get()
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	interval, _ := cmd.Flags().GetDuration("interval")
	once, _ := cmd.Flags().GetBool("once")

	c := client.Dial(addr, 2*time.Second)
	defer c.Close()

	model := newStatsModel(addr, interval, c.Stats)
	if once {
		st, err := c.Stats()
		if err != nil {
			return fmt.Errorf("failed to fetch stats: %w", err)
		}
		model.stats = st
		_, err = fmt.Fprint(cmd.OutOrStdout(), model.View())

		return err
	}

	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("failed to run watch: %w", err)
	}

	return nil
}
