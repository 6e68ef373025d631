//go:build !unix && !windows

package elevation

// IsPrivileged always reports false on hosts without a privilege model.
func IsPrivileged() bool {
	return false
}
