package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudgroundcontrol/voice-channel/pkg/backend"
)

func NewChannelsCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List or create channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listChannels(cmd, deps)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the channels you can see",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listChannels(cmd, deps)
		},
	})
	cmd.AddCommand(newCreateChannelCmd(deps))
	cmd.AddCommand(newMembersCmd(deps))

	return cmd
}

func listChannels(cmd *cobra.Command, deps *Dependencies) error {
	formatter := NewFormatter(cmd.OutOrStdout())

	channels, err := deps.App.Backend.GetChannels(cmd.Context())
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		formatter.Info("No channels found")
		return nil
	}

	formatter.ChannelListHeader()
	for _, c := range channels {
		formatter.ChannelListItem(c)
	}
	return nil
}

func newCreateChannelCmd(deps *Dependencies) *cobra.Command {
	var req backend.ChannelRequest

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := NewFormatter(cmd.OutOrStdout())

			req.Name = args[0]
			ch, err := deps.App.Backend.CreateChannel(cmd.Context(), req)
			if err != nil {
				return err
			}
			formatter.Success(fmt.Sprintf("Channel %s created (%s)", ch.DisplayName, ch.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Emoji, "emoji", "e", "", "Channel emoji")
	cmd.Flags().StringVar(&req.Description, "description", "", "Channel description")
	cmd.Flags().BoolVar(&req.IsPrivate, "private", false, "Only members can see the channel")
	cmd.Flags().StringVar(&req.Admin, "admin", "", "User that becomes the first admin")

	return cmd
}

func newMembersCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "members <channel>",
		Short: "List the members of a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := NewFormatter(cmd.OutOrStdout())

			members, err := deps.App.Backend.GetChannelMembers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(members) == 0 {
				formatter.Info("No members found")
				return nil
			}
			for _, m := range members {
				role := ""
				if m.IsAdmin {
					role = " (admin)"
				}
				formatter.Info(fmt.Sprintf("%s <%s>%s", m.DisplayName, m.User, role))
			}
			return nil
		},
	}
}
