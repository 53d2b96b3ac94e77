package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/wildaware/internal/pipeline"
)

var catalogJSON bool

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List known species and rescue organizations",
	Long: `Print the species reference list in match precedence order, with
keywords and risk levels, followed by the rescue directory.

The list comes from the configured catalog source (static, file or remote).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		provider, err := buildCatalogProvider(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		defer closeProvider(provider, logger)
		cat, err := provider.Catalog(ctx)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}

		renderer := pipeline.NewRenderer(cfg.Output.Verbose)
		if catalogJSON {
			return renderer.RenderJSON(cmd.OutOrStdout(), cat)
		}
		return renderer.RenderCatalogText(cmd.OutOrStdout(), cat.Species, cat.RescueOrgs)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "print the catalog as JSON")
}
