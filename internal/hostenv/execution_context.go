package hostenv

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/term"
)

const (
	operatingSystemWindowsConstant         = "windows"
	debugEnvironmentVariableConstant       = "DEBUG"
	environmentAssignmentSeparatorConstant = "="
)

// TunnelSettings describes a globally active proxy tunnel populated outside of the execution subsystem.
type TunnelSettings struct {
	Host      string
	Port      int
	ProxyAuth string
}

// ExecutionContext carries the host facts consulted by the execution subsystem.
// One value is constructed per top-level command invocation and passed explicitly.
type ExecutionContext struct {
	InvocationID    string
	OperatingSystem string
	Environment     Environment
	StandardInput   io.Reader
	StandardOutput  io.Writer
	StandardError   io.Writer
	Interactive     bool
	SelfInvocation  []string
	ProxyTunnel     *TunnelSettings
}

// Detect builds an ExecutionContext describing the running process.
func Detect() ExecutionContext {
	selfInvocation := []string{os.Args[0]}
	if executablePath, executableError := os.Executable(); executableError == nil {
		selfInvocation = []string{executablePath}
	}

	return ExecutionContext{
		InvocationID:    uuid.NewString(),
		OperatingSystem: runtime.GOOS,
		Environment:     OSEnvironment{},
		StandardInput:   os.Stdin,
		StandardOutput:  os.Stdout,
		StandardError:   os.Stderr,
		Interactive:     term.IsTerminal(int(os.Stdin.Fd())),
		SelfInvocation:  selfInvocation,
	}
}

// LookupEnvironment returns the value of an environment variable and whether it is set.
// A nil Environment reads the live process environment.
func (executionContext ExecutionContext) LookupEnvironment(key string) (string, bool) {
	return executionContext.environment().Lookup(key)
}

// EnvironmentValue returns the value of an environment variable or an empty string.
func (executionContext ExecutionContext) EnvironmentValue(key string) string {
	value, _ := executionContext.LookupEnvironment(key)
	return value
}

// EnvironmentEntries returns the environment in KEY=value form.
func (executionContext ExecutionContext) EnvironmentEntries() []string {
	return executionContext.environment().Entries()
}

func (executionContext ExecutionContext) environment() Environment {
	if executionContext.Environment == nil {
		return OSEnvironment{}
	}
	return executionContext.Environment
}

// IsWindows reports whether the host operating system is Windows.
func (executionContext ExecutionContext) IsWindows() bool {
	return strings.EqualFold(executionContext.OperatingSystem, operatingSystemWindowsConstant)
}

// DebugEnabled reports whether the DEBUG environment variable holds a non-empty value.
func (executionContext ExecutionContext) DebugEnabled() bool {
	return len(executionContext.EnvironmentValue(debugEnvironmentVariableConstant)) > 0
}

// ErrorWriter returns the stream diagnostics are appended to.
func (executionContext ExecutionContext) ErrorWriter() io.Writer {
	if executionContext.StandardError == nil {
		return io.Discard
	}
	return executionContext.StandardError
}

// OutputWriter returns the stream regular output is appended to.
func (executionContext ExecutionContext) OutputWriter() io.Writer {
	if executionContext.StandardOutput == nil {
		return io.Discard
	}
	return executionContext.StandardOutput
}
