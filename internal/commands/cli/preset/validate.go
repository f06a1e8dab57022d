package preset

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_pool/internal/config"
	"github.com/andrei-cloud/go_pool/internal/entity"
	"github.com/andrei-cloud/go_pool/internal/preset"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate preset files",
		Long:  `Check that preset files parse and that every prototype exists in the configured catalog.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	catalog := entity.NewCatalog(config.Get().Catalog...)

	for _, path := range args {
		doc, err := preset.LoadFile(path)
		if err != nil {
			return err
		}
		p, err := preset.Resolve(doc, catalog)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: preset %q ok, %d categories\n",
			path, p.Name, len(p.Definitions))
	}

	return nil
}
