package snapcli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/flatmove/internal/execshell"
)

const (
	listSubcommandConstant                  = "list"
	removeSubcommandConstant                = "remove"
	snapNameFieldNameConstant               = "snap_name"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "snap executor not configured"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	isInstalledOperationNameConstant        = OperationName("IsInstalled")
	removeOperationNameConstant             = OperationName("Remove")
)

// OperationName describes a named snap workflow supported by the client.
type OperationName string

// SnapCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type SnapCommandExecutor interface {
	ExecuteSnap(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates snap invocations through execshell.
type Client struct {
	executor SnapCommandExecutor
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

// OperationError wraps execution issues for snap operations.
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

// NewClient constructs a snap client.
func NewClient(executor SnapCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// IsInstalled reports whether the named snap appears in the installed listing.
//
// Matching is a substring check against the snap list output: a snap name that
// is a substring of another installed snap's name will report a false
// positive. This loose matching is a known limitation kept for parity with
// the listing-based query it replaces.
func (client *Client) IsInstalled(executionContext context.Context, snapName string) (bool, error) {
	trimmedSnapName := strings.TrimSpace(snapName)
	if len(trimmedSnapName) == 0 {
		return false, InvalidInputError{FieldName: snapNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{listSubcommandConstant},
	}

	executionResult, executionError := client.executor.ExecuteSnap(executionContext, commandDetails)
	if executionError != nil {
		return false, OperationError{Operation: isInstalledOperationNameConstant, Cause: executionError}
	}

	return strings.Contains(executionResult.StandardOutput, trimmedSnapName), nil
}

// Remove uninstalls the named snap.
func (client *Client) Remove(executionContext context.Context, snapName string) error {
	trimmedSnapName := strings.TrimSpace(snapName)
	if len(trimmedSnapName) == 0 {
		return InvalidInputError{FieldName: snapNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{removeSubcommandConstant, trimmedSnapName},
	}

	if _, executionError := client.executor.ExecuteSnap(executionContext, commandDetails); executionError != nil {
		return OperationError{Operation: removeOperationNameConstant, Cause: executionError}
	}
	return nil
}
