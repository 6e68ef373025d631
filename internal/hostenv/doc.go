// Package hostenv describes the host a command runs on.
//
// ExecutionContext gathers the environment, operating system, standard
// streams, and externally populated proxy tunnel state once per CLI
// invocation so that every execution component receives them explicitly and
// tests can substitute synthetic hosts without touching process state.
package hostenv
