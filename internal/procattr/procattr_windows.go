//go:build windows

package procattr

import (
	"os"
	"os/exec"
	"syscall"
)

const createNoWindow = 0x08000000

// Hide suppresses the console window of cmd.
func Hide(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.HideWindow = true
	cmd.SysProcAttr.CreationFlags |= createNoWindow
}

// Detach hides the window; Windows has no process groups to join here.
func Detach(cmd *exec.Cmd) {
	Hide(cmd)
}

// Interrupt cannot deliver a console interrupt to a windowless child, so it
// kills directly.
func Interrupt(p *os.Process) error {
	return Kill(p)
}

// Kill terminates p.
func Kill(p *os.Process) error {
	if p == nil {
		return os.ErrProcessDone
	}
	return p.Kill()
}
