// Package netproxy derives the outbound proxy from the execution context.
package netproxy
