package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/cloudgroundcontrol/voice-channel/pkg/backend"
	"github.com/cloudgroundcontrol/voice-channel/pkg/ledger"
	"github.com/cloudgroundcontrol/voice-channel/pkg/recorder"
	"github.com/cloudgroundcontrol/voice-channel/pkg/recording"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) RecordingStarted(channel string) {
	fmt.Fprintf(f.w, "🎙️  Recording into %s (Ctrl+C to stop)\n", channel)
}

func (f *Formatter) RecordingStopped(elapsed time.Duration) {
	fmt.Fprintf(f.w, "⏹️  Recording stopped (%s)\n", recorder.FormatElapsed(elapsed))
}

func (f *Formatter) Uploading() {
	fmt.Fprintf(f.w, "📤 Uploading voice note...\n")
}

func (f *Formatter) Outcome(o recording.Outcome) {
	if o.LocalPath != "" {
		fmt.Fprintf(f.w, "💾 Local copy: %s\n", o.LocalPath)
	}
	if o.Skipped {
		f.Warning("Nothing was captured, no voice note created")
		return
	}
	fmt.Fprintf(f.w, "✅ Voice note %s created (%.1fs, %d bytes)\n", o.Result.TimelineRecordID, o.DurationSeconds, o.Bytes)
}

func (f *Formatter) ChannelListHeader() {
	fmt.Fprintf(f.w, "📁 Channels:\n\n")
}

func (f *Formatter) ChannelListItem(c backend.Channel) {
	lock := ""
	if c.IsPrivate {
		lock = " 🔒"
	}
	admin := ""
	if c.IsAdmin {
		admin = " (admin)"
	}
	fmt.Fprintf(f.w, "  %s %s [%s]%s%s\n", c.Emoji, c.DisplayName, c.ID, lock, admin)
}

func (f *Formatter) TimelineItem(item backend.TimelineItem) {
	meta := item.Meta()
	switch v := item.(type) {
	case backend.VoiceNote:
		fmt.Fprintf(f.w, "  🎤 %s  %s  %.1fs  %s\n", meta.ID, meta.OwnerName, v.DurationSeconds, v.VoiceFile)
	case backend.TextNote:
		fmt.Fprintf(f.w, "  📝 %s  %s  %s\n", meta.ID, meta.OwnerName, v.Content)
	case backend.Todo:
		box := "[ ]"
		if v.Completed {
			box = "[x]"
		}
		fmt.Fprintf(f.w, "  %s %s  %s  %s\n", box, meta.ID, meta.OwnerName, v.Title)
	}
}

func (f *Formatter) OrphanListHeader() {
	fmt.Fprintf(f.w, "🧩 Orphaned uploads:\n\n")
}

func (f *Formatter) Orphan(o ledger.Orphan) {
	status := "open"
	if o.ResolvedAt != nil {
		status = "resolved"
	}
	fmt.Fprintf(f.w, "  #%d %s  %s  %s  (%s)\n", o.ID, o.Channel, o.RemoteURL, o.CreatedAt.Format(time.RFC3339), status)
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}
