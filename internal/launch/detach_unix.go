//go:build !windows

package launch

import (
	"os/exec"
	"syscall"
)

// detach puts the child in its own process group so signals aimed at the
// launcher's group do not reach it.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
