//go:build !windows

package procattr

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// Hide is a no-op outside Windows.
func Hide(*exec.Cmd) {}

// Detach starts cmd in a new process group.
func Detach(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// Interrupt delivers SIGINT to the process group led by p.
func Interrupt(p *os.Process) error {
	return signalGroup(p, unix.SIGINT)
}

// Kill delivers SIGKILL to the process group led by p.
func Kill(p *os.Process) error {
	return signalGroup(p, unix.SIGKILL)
}

func signalGroup(p *os.Process, sig unix.Signal) error {
	if p == nil {
		return os.ErrProcessDone
	}
	if err := unix.Kill(-p.Pid, sig); err != nil {
		if err == unix.ESRCH {
			return os.ErrProcessDone
		}
		return err
	}
	return nil
}
