package preset

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_pool/internal/config"
	"github.com/andrei-cloud/go_pool/internal/preset"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured categories",
		Long:  `List the inline categories and the categories of every configured preset.`,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg := config.Get()

	// Create tabwriter for aligned output.
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "Source\tCategory\tCapacity\tPrototype")
	_, _ = fmt.Fprintln(w, "------\t--------\t--------\t---------")

	for _, e := range cfg.Pool.Categories {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", "config", e.Name, e.Capacity, e.Prototype)
	}

	for _, path := range cfg.Pool.Presets {
		doc, err := preset.LoadFile(path)
		if err != nil {
			return err
		}
		writeDocument(w, doc)
	}

	if len(cfg.Pool.SharedPresets) > 0 {
		store := newStore(cfg)
		if store == nil {
			return preset.ErrNoStore
		}
		for _, name := range cfg.Pool.SharedPresets {
			doc, err := store.Load(cmd.Context(), name)
			if err != nil {
				return err
			}
			writeDocument(w, doc)
		}
	}

	return w.Flush()
}

func writeDocument(w *tabwriter.Writer, doc *preset.Document) {
	for _, e := range doc.Categories {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", doc.Name, e.Name, e.Capacity, e.Prototype)
	}
}
