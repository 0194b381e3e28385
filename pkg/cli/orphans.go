package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var ErrNoLedger = errors.New("no ledger configured, set LEDGER_PATH")

func NewOrphansCmd(deps *Dependencies) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "List uploads that never became a voice note",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := NewFormatter(cmd.OutOrStdout())
			if deps.App.Ledger == nil {
				return ErrNoLedger
			}

			orphans, err := deps.App.Ledger.List(cmd.Context(), all)
			if err != nil {
				return err
			}
			if len(orphans) == 0 {
				formatter.Info("No orphaned uploads")
				return nil
			}

			formatter.OrphanListHeader()
			for _, o := range orphans {
				formatter.Orphan(o)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include resolved entries")
	cmd.AddCommand(newResolveOrphanCmd(deps))

	return cmd
}

func newResolveOrphanCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id>",
		Short: "Mark an orphaned upload as handled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := NewFormatter(cmd.OutOrStdout())
			if deps.App.Ledger == nil {
				return ErrNoLedger
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid orphan id %q: %w", args[0], err)
			}
			if err = deps.App.Ledger.Resolve(cmd.Context(), id); err != nil {
				return err
			}
			formatter.Success(fmt.Sprintf("Orphan #%d resolved", id))
			return nil
		},
	}
}
