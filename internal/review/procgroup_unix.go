//go:build unix

package review

import (
	"os/exec"
	"syscall"
)

func isolateProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// отрицательный pid - сигнал всей группе
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
