//go:build !windows

package executor

import (
	"context"
	"os/exec"
	"syscall"
	"time"
)

// Output files are plain files, so Wait never blocks on copying goroutines;
// the delay only bounds how long Wait waits after the kill.
const waitDelay = 5 * time.Second

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	return exec.CommandContext(ctx, "/bin/sh", "-c", command)
}

// configureCommandProcess starts the program in its own process group so the
// shell and everything it spawned can be killed together.
func configureCommandProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		terminateCommandProcess(cmd)
		return nil
	}
	cmd.WaitDelay = waitDelay
}

func terminateCommandProcess(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	if pid <= 0 {
		return
	}
	// Negative PGID targets the full process group (shell + spawned children).
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
}
