package cli

import (
	"context"
	"fmt"
	"shopfloor/common"
	"shopfloor/domain/costing"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/spf13/cobra"
)

type metricsLookup func(ctx context.Context, id types.ID, now time.Time) (*costing.Metrics, error)

func lookupOf(scope string) (metricsLookup, error) {
	switch scope {
	case costing.ScopeRecord:
		return costing.RecordMetricsFunc, nil
	case costing.ScopeGroup:
		return costing.GroupMetricsFunc, nil
	case costing.ScopeProject:
		return costing.ProjectMetricsFunc, nil
	case costing.ScopeCompany:
		return costing.CompanyMetricsFunc, nil
	}
	return nil, fmt.Errorf("unknown scope %q, want record, group, project or company", scope)
}

// MetricsCmd prints the cost and profitability figures of a scope.
func MetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <record|group|project|company> <id>",
		Short: "Show time, cost and profitability figures",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup, err := lookupOf(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			m, err := lookup(cmd.Context(), id, common.NowFunc())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s: %d records\n", m.Scope, m.ScopeID.String(), len(m.Records))
			fmt.Fprintf(out, "  time          %s min\n", m.TotalTimeMinutes.StringFixed(2))
			fmt.Fprintf(out, "  charged       %s\n", m.TotalCharged.StringFixed(2))
			fmt.Fprintf(out, "  machine cost  %s\n", m.TotalMachineCost.StringFixed(2))
			fmt.Fprintf(out, "  material cost %s\n", m.TotalMaterialCost.StringFixed(2))
			fmt.Fprintf(out, "  profit        %s\n", m.Profit.StringFixed(2))
			if m.RealValuePerMinute != nil {
				fmt.Fprintf(out, "  value/min     %s\n", m.RealValuePerMinute.StringFixed(2))
			}
			fmt.Fprint(out, "  rating        ")
			printStatus(out, string(m.Rating))
			fmt.Fprintln(out)
			return nil
		},
	}
}
