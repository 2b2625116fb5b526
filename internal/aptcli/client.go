package aptcli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/flatmove/internal/execshell"
)

const (
	updateSubcommandConstant                = "update"
	installSubcommandConstant               = "install"
	purgeSubcommandConstant                 = "purge"
	autoremoveSubcommandConstant            = "autoremove"
	assumeYesFlagConstant                   = "-y"
	showFormatFlagConstant                  = "--show"
	statusFormatFlagConstant                = "--showformat=${Status}"
	installedStatusMarkerConstant           = "install ok installed"
	packageNotFoundExitCodeConstant         = 1
	packageNameFieldNameConstant            = "package_name"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "apt executor not configured"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	refreshIndexOperationNameConstant       = OperationName("RefreshIndex")
	installOperationNameConstant            = OperationName("Install")
	purgeOperationNameConstant              = OperationName("Purge")
	autoremoveOperationNameConstant         = OperationName("Autoremove")
	isInstalledOperationNameConstant        = OperationName("IsInstalled")
)

// OperationName describes a named APT workflow supported by the client.
type OperationName string

// AptCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type AptCommandExecutor interface {
	ExecuteAptGet(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteDpkgQuery(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates APT invocations through execshell.
type Client struct {
	executor AptCommandExecutor
}

// ErrExecutorNotConfigured indicates the client was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for APT operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// NewClient constructs an APT client.
func NewClient(executor AptCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// IsInstalled reports whether the named package is installed according to dpkg-query.
//
// A dpkg-query exit code of 1 means no package matched and is the normal
// "not installed" answer, yielding false without an error. Any other failure
// (runner faults, or exits such as a held dpkg frontend lock) propagates so
// the caller never mistakes a broken query mechanism for absence.
func (client *Client) IsInstalled(executionContext context.Context, packageName string) (bool, error) {
	trimmedPackageName := strings.TrimSpace(packageName)
	if len(trimmedPackageName) == 0 {
		return false, InvalidInputError{FieldName: packageNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{showFormatFlagConstant, statusFormatFlagConstant, trimmedPackageName},
	}

	executionResult, executionError := client.executor.ExecuteDpkgQuery(executionContext, commandDetails)
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) && commandFailure.Result.ExitCode == packageNotFoundExitCodeConstant {
			return false, nil
		}
		return false, OperationError{Operation: isInstalledOperationNameConstant, Cause: executionError}
	}

	return strings.Contains(executionResult.StandardOutput, installedStatusMarkerConstant), nil
}

// RefreshIndex refreshes the APT package index via apt-get update.
func (client *Client) RefreshIndex(executionContext context.Context) error {
	commandDetails := execshell.CommandDetails{
		Arguments: []string{updateSubcommandConstant},
	}

	if _, executionError := client.executor.ExecuteAptGet(executionContext, commandDetails); executionError != nil {
		return OperationError{Operation: refreshIndexOperationNameConstant, Cause: executionError}
	}
	return nil
}

// Install installs the named package via apt-get install.
func (client *Client) Install(executionContext context.Context, packageName string) error {
	trimmedPackageName := strings.TrimSpace(packageName)
	if len(trimmedPackageName) == 0 {
		return InvalidInputError{FieldName: packageNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{installSubcommandConstant, assumeYesFlagConstant, trimmedPackageName},
	}

	if _, executionError := client.executor.ExecuteAptGet(executionContext, commandDetails); executionError != nil {
		return OperationError{Operation: installOperationNameConstant, Cause: executionError}
	}
	return nil
}

// Purge removes the named package and its configuration via apt-get purge.
func (client *Client) Purge(executionContext context.Context, packageName string) error {
	trimmedPackageName := strings.TrimSpace(packageName)
	if len(trimmedPackageName) == 0 {
		return InvalidInputError{FieldName: packageNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{purgeSubcommandConstant, assumeYesFlagConstant, trimmedPackageName},
	}

	if _, executionError := client.executor.ExecuteAptGet(executionContext, commandDetails); executionError != nil {
		return OperationError{Operation: purgeOperationNameConstant, Cause: executionError}
	}
	return nil
}

// Autoremove removes packages that were installed as dependencies and are no longer required.
func (client *Client) Autoremove(executionContext context.Context) error {
	commandDetails := execshell.CommandDetails{
		Arguments: []string{autoremoveSubcommandConstant, assumeYesFlagConstant},
	}

	if _, executionError := client.executor.ExecuteAptGet(executionContext, commandDetails); executionError != nil {
		return OperationError{Operation: autoremoveOperationNameConstant, Cause: executionError}
	}
	return nil
}
