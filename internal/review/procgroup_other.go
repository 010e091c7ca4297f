//go:build !unix

package review

import "os/exec"

// без process group: CommandContext убьет только сам процесс
func isolateProcessGroup(cmd *exec.Cmd) {}
