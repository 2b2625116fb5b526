package flatpakcli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/flatmove/internal/execshell"
)

const (
	remoteAddSubcommandConstant             = "remote-add"
	listSubcommandConstant                  = "list"
	installSubcommandConstant               = "install"
	ifNotExistsFlagConstant                 = "--if-not-exists"
	applicationsOnlyFlagConstant            = "--app"
	applicationColumnsFlagConstant          = "--columns=application"
	assumeYesFlagConstant                   = "--assumeyes"
	noninteractiveFlagConstant              = "--noninteractive"
	remoteNameFieldNameConstant             = "remote_name"
	remoteURLFieldNameConstant              = "remote_url"
	applicationIDFieldNameConstant          = "application_id"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "flatpak executor not configured"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	ensureRemoteOperationNameConstant       = OperationName("EnsureRemote")
	isInstalledOperationNameConstant        = OperationName("IsInstalled")
	installOperationNameConstant            = OperationName("Install")
)

// OperationName describes a named Flatpak workflow supported by the client.
type OperationName string

// FlatpakCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type FlatpakCommandExecutor interface {
	ExecuteFlatpak(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates flatpak invocations through execshell.
type Client struct {
	executor FlatpakCommandExecutor
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

// OperationError wraps execution issues for Flatpak operations.
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

// NewClient constructs a Flatpak client.
func NewClient(executor FlatpakCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// EnsureRemote registers the named remote when it is not already configured.
func (client *Client) EnsureRemote(executionContext context.Context, remoteName string, remoteURL string) error {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return InvalidInputError{FieldName: remoteNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedRemoteURL := strings.TrimSpace(remoteURL)
	if len(trimmedRemoteURL) == 0 {
		return InvalidInputError{FieldName: remoteURLFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{remoteAddSubcommandConstant, ifNotExistsFlagConstant, trimmedRemoteName, trimmedRemoteURL},
	}

	if _, executionError := client.executor.ExecuteFlatpak(executionContext, commandDetails); executionError != nil {
		return OperationError{Operation: ensureRemoteOperationNameConstant, Cause: executionError}
	}
	return nil
}

// IsInstalled reports whether the application identifier appears in the installed application listing.
//
// Matching is a substring check against the flatpak list output: an
// application identifier that is a substring of another installed
// application's identifier will report a false positive. This loose matching
// is a known limitation kept for parity with the listing-based query it
// replaces.
func (client *Client) IsInstalled(executionContext context.Context, applicationID string) (bool, error) {
	trimmedApplicationID := strings.TrimSpace(applicationID)
	if len(trimmedApplicationID) == 0 {
		return false, InvalidInputError{FieldName: applicationIDFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{listSubcommandConstant, applicationsOnlyFlagConstant, applicationColumnsFlagConstant},
	}

	executionResult, executionError := client.executor.ExecuteFlatpak(executionContext, commandDetails)
	if executionError != nil {
		return false, OperationError{Operation: isInstalledOperationNameConstant, Cause: executionError}
	}

	return strings.Contains(executionResult.StandardOutput, trimmedApplicationID), nil
}

// Install performs a single installation attempt for the application from the named remote.
//
// Installing an already-installed application is a no-op success at the
// flatpak level; callers avoid redundant attempts by querying IsInstalled
// first.
func (client *Client) Install(executionContext context.Context, remoteName string, applicationID string) error {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return InvalidInputError{FieldName: remoteNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedApplicationID := strings.TrimSpace(applicationID)
	if len(trimmedApplicationID) == 0 {
		return InvalidInputError{FieldName: applicationIDFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{installSubcommandConstant, assumeYesFlagConstant, noninteractiveFlagConstant, trimmedRemoteName, trimmedApplicationID},
	}

	if _, executionError := client.executor.ExecuteFlatpak(executionContext, commandDetails); executionError != nil {
		return OperationError{Operation: installOperationNameConstant, Cause: executionError}
	}
	return nil
}
