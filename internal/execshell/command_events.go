package execshell

// CommandEventObserver is told about the lifecycle of every package-manager
// command the executor runs.
type CommandEventObserver interface {
	// CommandStarted fires before the command process is spawned.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once the command produced an execution result,
	// whether its exit code was zero or not.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the runner faulted before any
	// execution result existed.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver drops every event; it backs the executor until a
// real observer is registered.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
