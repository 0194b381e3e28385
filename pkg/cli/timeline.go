package cli

import (
	"github.com/spf13/cobra"

	"github.com/cloudgroundcontrol/voice-channel/pkg/backend"
)

func NewTimelineCmd(deps *Dependencies) *cobra.Command {
	var q backend.TimelineQuery

	cmd := &cobra.Command{
		Use:   "timeline <channel>",
		Short: "Show the newest items of a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := NewFormatter(cmd.OutOrStdout())

			items, err := deps.App.Backend.GetTimeline(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				formatter.Info("Timeline is empty")
				return nil
			}
			for _, item := range items {
				formatter.TimelineItem(item)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&q.Limit, "limit", "n", 0, "Number of items (defaults to 50)")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "Items to skip")

	return cmd
}
