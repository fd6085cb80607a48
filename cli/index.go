package cli

import (
	"errors"
	"fmt"
	"shopfloor/client/es"
	"shopfloor/config"
	"shopfloor/indices"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// IndexCmd rebuilds the production record search index in the foreground.
func IndexCmd(loaded func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the production record search index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loaded()
			if cfg == nil || !cfg.ElasticsearchEnabled {
				return errors.New("search index disabled, set SHOPFLOOR_ELASTICSEARCH_ENABLED=true")
			}
			es.CreateClientFromEnv()
			indices.SyncLimiter = rate.NewLimiter(rate.Limit(cfg.IndexSyncRate), 1)
			if err := indices.IndicesFullSyncFunc(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "index rebuilt")
			return nil
		},
	}
}
