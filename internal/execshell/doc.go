// Package execshell locates, escapes, and runs external programs.
//
// Locator resolves program names against the executable search path,
// EscapeArguments quotes argument vectors for POSIX shells or cmd.exe,
// OSCommandRunner spawns programs and normalizes exit codes and termination
// signals into ExecutionResult, and ShellExecutor layers structured logging,
// lifecycle observers, and failure policies on top of any CommandRunner.
package execshell
