package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudgroundcontrol/voice-channel/pkg/recorder"
	"github.com/cloudgroundcontrol/voice-channel/pkg/recording"
)

const statusPollInterval = 250 * time.Millisecond

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	var req recording.StartRequest
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a voice note into a channel",
		Long:  "Records from the configured device until Ctrl+C (or --duration), then uploads the voice note to the channel timeline.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := NewFormatter(cmd.OutOrStdout())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runRecording(ctx, deps.App.Recording, req, duration, formatter)
		},
	}

	cmd.Flags().StringVarP(&req.Channel, "channel", "c", "", "Channel to post the voice note to")
	cmd.Flags().StringVarP(&req.StatusEmoji, "emoji", "e", "", "Status emoji of the voice note")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Stop automatically after this long")
	_ = cmd.MarkFlagRequired("channel")

	return cmd
}

func runRecording(ctx context.Context, svc recording.Service, req recording.StartRequest, duration time.Duration, formatter *Formatter) error {
	if err := svc.Start(ctx, req); err != nil {
		return err
	}
	formatter.RecordingStarted(req.Channel)

	status := waitForStop(ctx, svc, duration)
	formatter.RecordingStopped(status.Elapsed)

	// Stopping must outlive the interrupt that asked for it
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if !status.Recording {
		// The recorder ended on its own, either by failure or the configured limit
		if err := svc.Close(stopCtx); err != nil {
			return err
		}
		if status.State == recorder.StateFailed {
			return fmt.Errorf("recording interrupted: %w", recorder.ErrDeviceUnavailable)
		}
		formatter.Info("Recording ended by the maximum duration")
		return nil
	}

	formatter.Uploading()
	outcome, err := svc.Stop(stopCtx)
	if closeErr := svc.Close(stopCtx); closeErr != nil && !errors.Is(closeErr, recorder.ErrNotRecording) {
		err = errors.Join(err, closeErr)
	}
	if err != nil {
		if outcome.Result.Orphaned() {
			formatter.Warning(fmt.Sprintf("Stored at %s but no voice note was created", outcome.Result.RemoteURL))
		}
		return err
	}
	formatter.Outcome(outcome)
	return nil
}

// waitForStop blocks until ctx is done, duration elapses or the service stops
// recording by itself, and returns the last status it saw.
func waitForStop(ctx context.Context, svc recording.Service, duration time.Duration) recording.Status {
	var deadline <-chan time.Time
	if duration > 0 {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		deadline = timer.C
	}
	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return svc.Status()
		case <-deadline:
			return svc.Status()
		case <-ticker.C:
			status := svc.Status()
			if !status.Recording && !status.Uploading {
				return status
			}
		}
	}
}
