//go:build unix

package elevation

import "golang.org/x/sys/unix"

// IsPrivileged reports whether the process runs with an effective user ID of root.
func IsPrivileged() bool {
	return unix.Geteuid() == 0
}
