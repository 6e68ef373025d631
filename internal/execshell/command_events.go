package execshell

// CommandEventObserver receives lifecycle notifications for command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted supplies the result of a command that ran to termination.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports commands that could not be launched.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}

// observerFanout forwards every event to each observer in order.
type observerFanout []CommandEventObserver

func (observers observerFanout) CommandStarted(command ShellCommand) {
	for _, observer := range observers {
		observer.CommandStarted(command)
	}
}

func (observers observerFanout) CommandCompleted(command ShellCommand, result ExecutionResult) {
	for _, observer := range observers {
		observer.CommandCompleted(command, result)
	}
}

func (observers observerFanout) CommandExecutionFailed(command ShellCommand, failure error) {
	for _, observer := range observers {
		observer.CommandExecutionFailed(command, failure)
	}
}

func combineObservers(observers []CommandEventObserver) CommandEventObserver {
	configuredObservers := make(observerFanout, 0, len(observers))
	for _, observer := range observers {
		if observer != nil {
			configuredObservers = append(configuredObservers, observer)
		}
	}
	if len(configuredObservers) == 0 {
		return noopCommandEventObserver{}
	}
	return configuredObservers
}
