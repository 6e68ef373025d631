package elevation

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/temirov/fleetctl/internal/execshell"
)

const (
	powerShellProgramNameConstant     = execshell.CommandName("powershell.exe")
	powerShellNoProfileFlagConstant   = "-NoProfile"
	powerShellNonInteractiveConstant  = "-NonInteractive"
	powerShellCommandFlagConstant     = "-Command"
	runAsArgumentListTemplateConstant = `/d /s /c "%s 1> "%s" 2> "%s""`
	runAsScriptTemplateConstant       = "$p = Start-Process -FilePath cmd.exe -ArgumentList '%s' -Verb RunAs -Wait -PassThru; exit $p.ExitCode"
	powerShellSingleQuoteConstant     = "'"
	powerShellEscapedQuoteConstant    = "''"
	relayDirectoryPatternConstant     = "fleetctl-elevated-*"
	relayStandardOutputFileConstant   = "stdout.log"
	relayStandardErrorFileConstant    = "stderr.log"
)

// RunAsElevator elevates through PowerShell Start-Process -Verb RunAs on Windows. The elevated
// process runs in its own console, so its output is redirected to files and relayed afterwards.
type RunAsElevator struct {
	elevatorBase
}

// Elevate runs the command through an elevated cmd.exe. UAC explains itself, so no message is printed.
func (elevator *RunAsElevator) Elevate(executionContext context.Context, request Request) (execshell.ExecutionResult, error) {
	resolvedPath, arguments, invocation, prepareError := elevator.prepare(request)
	if prepareError != nil {
		return execshell.ExecutionResult{}, elevator.fail(invocation, prepareError)
	}

	if elevator.dependencies.Probe() {
		executionResult, executionError := elevator.runDirectly(executionContext, resolvedPath, arguments, request)
		if executionError != nil {
			return execshell.ExecutionResult{}, elevator.fail(invocation, executionError)
		}
		return executionResult, nil
	}

	commandLine, formatError := execshell.FormatCommandLine(execshell.ShellDialectWindowsCmd, resolvedPath, arguments)
	if formatError != nil {
		return execshell.ExecutionResult{}, elevator.fail(invocation, formatError)
	}

	relayDirectory, directoryError := os.MkdirTemp("", relayDirectoryPatternConstant)
	if directoryError != nil {
		return execshell.ExecutionResult{}, elevator.fail(invocation, directoryError)
	}
	defer os.RemoveAll(relayDirectory)

	standardOutputPath := filepath.Join(relayDirectory, relayStandardOutputFileConstant)
	standardErrorPath := filepath.Join(relayDirectory, relayStandardErrorFileConstant)

	argumentList := fmt.Sprintf(runAsArgumentListTemplateConstant, commandLine, standardOutputPath, standardErrorPath)
	script := fmt.Sprintf(runAsScriptTemplateConstant, strings.ReplaceAll(argumentList, powerShellSingleQuoteConstant, powerShellEscapedQuoteConstant))

	powerShellCommand := execshell.ShellCommand{
		Name: powerShellProgramNameConstant,
		Details: execshell.CommandDetails{
			Arguments:     []string{powerShellNoProfileFlagConstant, powerShellNonInteractiveConstant, powerShellCommandFlagConstant, script},
			FailurePolicy: execshell.FailurePolicyReturnTerminationStatus,
		},
	}
	executionResult, executionError := elevator.dependencies.Executor.Execute(executionContext, powerShellCommand)
	if executionError != nil {
		return execshell.ExecutionResult{}, elevator.fail(invocation, executionError)
	}

	if relayError := elevator.relayOutput(executionContext, standardOutputPath, standardErrorPath, elevator.errorSink(request)); relayError != nil {
		return execshell.ExecutionResult{}, elevator.fail(invocation, relayError)
	}

	if executionResult.Abnormal() {
		elevatedCommand := execshell.ShellCommand{Name: execshell.CommandName(invocation[0]), Details: execshell.CommandDetails{Arguments: arguments}}
		executionResult.ResolvedPath = resolvedPath
		return execshell.ExecutionResult{}, elevator.fail(invocation, execshell.CommandFailedError{Command: elevatedCommand, Result: executionResult})
	}
	return executionResult, nil
}

// relayOutput copies the elevated process's redirected streams to the caller's destinations.
// A file the elevated process never created is treated as empty output.
func (elevator *RunAsElevator) relayOutput(executionContext context.Context, standardOutputPath string, standardErrorPath string, errorSink io.Writer) error {
	relayGroup, _ := errgroup.WithContext(executionContext)
	relayGroup.Go(func() error {
		return relayFile(standardOutputPath, elevator.hostContext.OutputWriter())
	})
	relayGroup.Go(func() error {
		return relayFile(standardErrorPath, errorSink)
	})
	return relayGroup.Wait()
}

func relayFile(sourcePath string, destination io.Writer) error {
	sourceFile, openError := os.Open(sourcePath)
	if openError != nil {
		if os.IsNotExist(openError) {
			return nil
		}
		return openError
	}
	defer sourceFile.Close()

	_, copyError := io.Copy(destination, sourceFile)
	return copyError
}
