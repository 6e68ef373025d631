package execshell

import (
	"strings"

	"al.essio.dev/pkg/shellescape"

	"github.com/temirov/fleetctl/internal/hostenv"
)

// ShellDialect enumerates the quoting rules the escaper can target.
type ShellDialect int

const (
	// ShellDialectPOSIX covers sh, bash, and compatible shells, including POSIX layers on Windows.
	ShellDialectPOSIX ShellDialect = iota
	// ShellDialectWindowsCmd covers the Windows cmd.exe interpreter.
	ShellDialectWindowsCmd
)

const (
	shellEnvironmentVariableConstant   = "SHELL"
	comSpecEnvironmentVariableConstant = "ComSpec"
	cmdExecutableSuffixConstant        = "cmd.exe"
	windowsDoubleQuoteConstant         = `"`
	windowsDoubledQuoteConstant        = `""`
	windowsCaretConstant               = "^"
	windowsMetacharactersConstant      = "()%!^<>&|"
	commandLineSeparatorConstant       = " "
)

// String names the dialect.
func (dialect ShellDialect) String() string {
	switch dialect {
	case ShellDialectPOSIX:
		return "posix"
	case ShellDialectWindowsCmd:
		return "cmd"
	default:
		return "unknown"
	}
}

// ResolveShellDialect selects the dialect for an invocation.
// With detectShell a SHELL variable implies POSIX even on Windows and its absence on Windows implies cmd.exe.
// Without detectShell the native dialect of the host is used, as process APIs that launch through
// the operating system shell ignore shell override variables.
func ResolveShellDialect(executionContext hostenv.ExecutionContext, detectShell bool) ShellDialect {
	if !executionContext.IsWindows() {
		return ShellDialectPOSIX
	}
	if !detectShell {
		return ShellDialectWindowsCmd
	}
	if _, shellDefined := executionContext.LookupEnvironment(shellEnvironmentVariableConstant); shellDefined {
		return ShellDialectPOSIX
	}
	return ShellDialectWindowsCmd
}

// IsWindowsCmdSession reports a pure cmd.exe or PowerShell session: a Windows host
// without a SHELL variable whose ComSpec points at cmd.exe.
func IsWindowsCmdSession(executionContext hostenv.ExecutionContext) bool {
	if !executionContext.IsWindows() {
		return false
	}
	if _, shellDefined := executionContext.LookupEnvironment(shellEnvironmentVariableConstant); shellDefined {
		return false
	}
	comSpec := strings.ToLower(strings.TrimSpace(executionContext.EnvironmentValue(comSpecEnvironmentVariableConstant)))
	return strings.HasSuffix(comSpec, cmdExecutableSuffixConstant)
}

// ShellEscape escapes arguments for the dialect resolved from the execution context.
func ShellEscape(executionContext hostenv.ExecutionContext, arguments []string, detectShell bool) ([]string, error) {
	return EscapeArguments(ResolveShellDialect(executionContext, detectShell), arguments)
}

// EscapeArguments quotes every argument for the dialect. The output depends only on the dialect and input.
func EscapeArguments(dialect ShellDialect, arguments []string) ([]string, error) {
	var escapeArgument func(string) string
	switch dialect {
	case ShellDialectPOSIX:
		escapeArgument = EscapePOSIXArgument
	case ShellDialectWindowsCmd:
		escapeArgument = EscapeWindowsCmdArgument
	default:
		return nil, &UnsupportedDialectError{Dialect: dialect}
	}

	escapedArguments := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		escapedArguments = append(escapedArguments, escapeArgument(argument))
	}
	return escapedArguments, nil
}

// FormatCommandLine renders a program path and its escaped arguments as one command line.
// The program path is a path rather than an argument value, so it is only quoted, never caret-escaped.
func FormatCommandLine(dialect ShellDialect, programPath string, arguments []string) (string, error) {
	escapedArguments, escapeError := EscapeArguments(dialect, arguments)
	if escapeError != nil {
		return "", escapeError
	}

	renderedProgram := programPath
	switch dialect {
	case ShellDialectWindowsCmd:
		renderedProgram = windowsDoubleQuoteConstant + strings.Trim(programPath, windowsDoubleQuoteConstant) + windowsDoubleQuoteConstant
	case ShellDialectPOSIX:
		renderedProgram = EscapePOSIXArgument(programPath)
	}

	commandLineParts := append([]string{renderedProgram}, escapedArguments...)
	return strings.Join(commandLineParts, commandLineSeparatorConstant), nil
}

// EscapePOSIXArgument quotes an argument for POSIX shells. Arguments made only of
// safe characters are returned verbatim; everything else is single-quoted.
func EscapePOSIXArgument(argument string) string {
	return shellescape.Quote(argument)
}

// EscapeWindowsCmdArgument quotes an argument for cmd.exe: an existing wrapping pair of double
// quotes is removed, metacharacters are caret-escaped, embedded double quotes are doubled, and the
// result is wrapped in double quotes.
func EscapeWindowsCmdArgument(argument string) string {
	if len(argument) >= 2 && strings.HasPrefix(argument, windowsDoubleQuoteConstant) && strings.HasSuffix(argument, windowsDoubleQuoteConstant) {
		argument = argument[1 : len(argument)-1]
	}

	var builder strings.Builder
	builder.Grow(len(argument) + 2)
	for _, character := range argument {
		if strings.ContainsRune(windowsMetacharactersConstant, character) {
			builder.WriteString(windowsCaretConstant)
		}
		builder.WriteRune(character)
	}

	doubledQuotes := strings.ReplaceAll(builder.String(), windowsDoubleQuoteConstant, windowsDoubledQuoteConstant)
	return windowsDoubleQuoteConstant + doubledQuotes + windowsDoubleQuoteConstant
}
