package cli

import (
	"fmt"
	"shopfloor/common"
	"shopfloor/domain/sequencing"

	"github.com/spf13/cobra"
)

// ProjectCmd returns the project lifecycle commands.
func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Finalize, reopen or revert projects",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "finalize <id>",
		Short: "Mark a project finished and record its real time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := sequencing.FinalizeProjectFunc(cmd.Context(), id, common.NowFunc())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "project %s ", p.ID.String())
			printStatus(out, string(p.Status))
			if p.RealTimeMinutes != nil {
				fmt.Fprintf(out, " real time %d min", *p.RealTimeMinutes)
			}
			fmt.Fprintln(out)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reopen <id>",
		Short: "Move a finished project back to pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := sequencing.ReopenProjectFunc(cmd.Context(), id, common.NowFunc())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "project %s ", p.ID.String())
			printStatus(out, string(p.Status))
			fmt.Fprintln(out)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "revert <id>",
		Short: "Reopen the most recently finished operation of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := sequencing.RevertLastOperationFunc(cmd.Context(), id, common.NowFunc())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "record %s reopened as PAUSED\n", r.RecordID.String())
			return nil
		},
	})
	return cmd
}
