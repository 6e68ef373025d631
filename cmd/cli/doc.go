// Package cli constructs the fleetctl command-line interface, wiring the
// Cobra command hierarchy, configuration loader, execution context, and
// structured logging. It exposes helpers to build reusable application
// instances and to execute the default command set.
package cli
