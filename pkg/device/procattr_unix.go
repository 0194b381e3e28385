//go:build unix

package device

import (
	"os/exec"
	"syscall"
)

// ownProcessGroup keeps terminal signals such as Ctrl+C away from ffmpeg.
// Only Flush may tell it to finish the container.
func ownProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
