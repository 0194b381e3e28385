package cli

import (
	"github.com/spf13/cobra"

	"github.com/cloudgroundcontrol/voice-channel/pkg/app"
	"github.com/cloudgroundcontrol/voice-channel/pkg/config"
)

type Dependencies struct {
	App    *app.App
	Config *config.Config
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "voice-channel",
		Short: "Record voice notes into team channels",
		Long:  "Captures audio from a local device, uploads it as a voice note to a channel timeline and manages channels, notes and todos.",

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewChannelsCmd(deps))
	rootCmd.AddCommand(NewTimelineCmd(deps))
	rootCmd.AddCommand(NewOrphansCmd(deps))

	return rootCmd
}
