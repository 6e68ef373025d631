// Package elevation re-runs commands with administrative privileges.
//
// Select picks one Elevator per host: SudoElevator wraps the escaped command line in
// `sudo -E /bin/sh -c`, and RunAsElevator hands an escaped cmd.exe line to PowerShell's
// Start-Process -Verb RunAs. Both resolve the program first and run directly when the
// process is already privileged.
package elevation
