// Package hostexec provides the Cobra commands that drive the execution subsystem from the command line:
// locating programs, running them with retries, escaping arguments, elevating privileges, resolving the
// outbound proxy, and ordering values against a reference list.
package hostexec
