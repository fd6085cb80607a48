// Package cli holds the shopfloorctl commands. They run the same operations as the HTTP API
// directly against the configured database.
package cli

import (
	"context"
	"fmt"
	"io"
	"shopfloor/common"
	"shopfloor/config"
	"shopfloor/domain/costing"
	"shopfloor/domain/sequencing"
	"shopfloor/persistence"
	"shopfloor/schema"

	"github.com/fatih/color"
	"github.com/fundwit/go-commons/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// OpenStoreFunc connects the active data source and returns its closer.
var OpenStoreFunc = openStore

func openStore(cfg *config.Config) (func(), error) {
	if cfg.Database.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(cfg.Database.DriverArgs); err != nil {
			return nil, err
		}
	}
	ds := &persistence.DataSourceManager{DatabaseConfig: &cfg.Database}
	if err := ds.Start(); err != nil {
		return nil, err
	}
	if err := schema.Migrate(ds.GormDB(context.Background())); err != nil {
		ds.Stop()
		return nil, err
	}
	persistence.ActiveDataSourceManager = ds
	return ds.Stop, nil
}

// RootCmd returns the shopfloorctl command tree. Flags override SHOPFLOOR_* variables.
func RootCmd() *cobra.Command {
	v := config.NewViper()
	var closeStore func()
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "shopfloorctl",
		Short:         "Operate production records, projects and groups from the shop floor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.LoadFrom(v); err != nil {
				return err
			}
			common.ConfigureLogger(cfg.ServiceName, cfg.LogFormat, cfg.LogLevel)
			costing.TargetValuePerMinute = cfg.TargetValuePerMinute
			costing.Tolerance = cfg.ProfitabilityTolerance
			sequencing.PrimaryOperationPattern = cfg.PrimaryOperationPattern

			closeStore, err = OpenStoreFunc(cfg)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeStore != nil {
				closeStore()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.String("database-driver", v.GetString(config.KeyDatabaseDriver), "mysql or sqlite3")
	flags.String("database-dsn", v.GetString(config.KeyDatabaseDSN), "database connection string")
	flags.String("log-level", v.GetString(config.KeyLogLevel), "logrus level")
	_ = v.BindPFlag(config.KeyDatabaseDriver, flags.Lookup("database-driver"))
	_ = v.BindPFlag(config.KeyDatabaseDSN, flags.Lookup("database-dsn"))
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	root.AddCommand(GroupCmd())
	root.AddCommand(ProjectCmd())
	root.AddCommand(MetricsCmd())
	root.AddCommand(IndexCmd(func() *config.Config { return cfg }))
	return root
}

func parseID(arg string) (types.ID, error) {
	id, err := types.ParseID(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", arg, err)
	}
	return id, nil
}

var (
	okMark   = color.New(color.FgHiGreen)
	warnMark = color.New(color.FgYellow)
	badMark  = color.New(color.FgRed)
)

func printStatus(w io.Writer, status string) {
	switch status {
	case "FINISHED", "grouped", string(costing.RatingExcellent), string(costing.RatingOnTarget):
		okMark.Fprint(w, status)
	case string(costing.RatingPoor):
		badMark.Fprint(w, status)
	default:
		warnMark.Fprint(w, status)
	}
}
