//go:build !unix

package execshell

// describeTermination reports the exit code; non-Unix hosts never report termination signals.
func describeTermination(state terminationState) (int, string) {
	return state.ExitCode(), ""
}
