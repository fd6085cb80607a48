package cli

import (
	"fmt"
	"shopfloor/common"
	"shopfloor/domain/sequencing"

	"github.com/spf13/cobra"
)

// GroupCmd groups the ungrouped records of a part code.
func GroupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "group <partCode>",
		Short: "Group ungrouped production records of a part code into one batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := sequencing.GroupUngroupedFunc(cmd.Context(), args[0], common.NowFunc())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: ", args[0])
			printStatus(out, result.Status)
			if result.GroupID != 0 {
				fmt.Fprintf(out, " group %s", result.GroupID.String())
			}
			fmt.Fprintln(out)
			for _, r := range result.Records {
				fmt.Fprintf(out, "  #%d record %s operation %s\n", r.OperationSequence, r.ID.String(), r.OperationID.String())
			}
			return nil
		},
	}
}
