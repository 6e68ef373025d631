//go:build unix

package execshell

import (
	"syscall"

	"golang.org/x/sys/unix"
)

const signaledExitCodeConstant = -1

// describeTermination splits a wait status into an exit code or a signal name.
func describeTermination(state terminationState) (int, string) {
	waitStatus, isWaitStatus := state.Sys().(syscall.WaitStatus)
	if !isWaitStatus || !waitStatus.Signaled() {
		return state.ExitCode(), ""
	}

	signalName := unix.SignalName(waitStatus.Signal())
	if len(signalName) == 0 {
		signalName = waitStatus.Signal().String()
	}
	return signaledExitCodeConstant, signalName
}
