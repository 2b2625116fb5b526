package aptcli_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/flatmove/internal/aptcli"
	"github.com/temirov/flatmove/internal/execshell"
)

const (
	testPackageNameConstant                = "vlc"
	testInstalledStatusOutputConstant      = "install ok installed"
	testDeinstalledStatusOutputConstant    = "deinstall ok config-files"
	testInstalledCaseNameConstant           = "package_installed"
	testConfigFilesOnlyCaseNameConstant     = "package_config_files_only"
	testNotInstalledCaseNameConstant        = "package_not_installed"
	testQueryMechanismErrorCaseNameConstant = "query_mechanism_error"
	testLockedDatabaseCaseNameConstant      = "query_locked_database_error"
	testLockedDatabaseStandardErrorConstant = "dpkg frontend lock is locked by another process"
)

type recordingAptExecutor struct {
	aptGetResults    []execshell.ExecutionResult
	aptGetErrors     []error
	dpkgQueryResult  execshell.ExecutionResult
	dpkgQueryError   error
	aptGetCommands   [][]string
	dpkgQueryQueries [][]string
}

func (executor *recordingAptExecutor) ExecuteAptGet(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.aptGetCommands = append(executor.aptGetCommands, details.Arguments)
	invocationIndex := len(executor.aptGetCommands) - 1
	var executionResult execshell.ExecutionResult
	if invocationIndex < len(executor.aptGetResults) {
		executionResult = executor.aptGetResults[invocationIndex]
	}
	var executionError error
	if invocationIndex < len(executor.aptGetErrors) {
		executionError = executor.aptGetErrors[invocationIndex]
	}
	return executionResult, executionError
}

func (executor *recordingAptExecutor) ExecuteDpkgQuery(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.dpkgQueryQueries = append(executor.dpkgQueryQueries, details.Arguments)
	return executor.dpkgQueryResult, executor.dpkgQueryError
}

func buildCommandFailedError(exitCode int, standardError string) error {
	return execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandDpkgQuery},
		Result:  execshell.ExecutionResult{ExitCode: exitCode, StandardError: standardError},
	}
}

func TestClientRequiresExecutor(testInstance *testing.T) {
	client, creationError := aptcli.NewClient(nil)
	require.Nil(testInstance, client)
	require.ErrorIs(testInstance, creationError, aptcli.ErrExecutorNotConfigured)
}

func TestClientIsInstalled(testInstance *testing.T) {
	testCases := []struct {
		name           string
		queryResult    execshell.ExecutionResult
		queryError     error
		expectedResult bool
		expectError    bool
	}{
		{
			name:           testInstalledCaseNameConstant,
			queryResult:    execshell.ExecutionResult{StandardOutput: testInstalledStatusOutputConstant},
			expectedResult: true,
		},
		{
			name:        testConfigFilesOnlyCaseNameConstant,
			queryResult: execshell.ExecutionResult{StandardOutput: testDeinstalledStatusOutputConstant},
		},
		{
			name:       testNotInstalledCaseNameConstant,
			queryError: buildCommandFailedError(1, ""),
		},
		{
			name:        testLockedDatabaseCaseNameConstant,
			queryError:  buildCommandFailedError(2, testLockedDatabaseStandardErrorConstant),
			expectError: true,
		},
		{
			name:        testQueryMechanismErrorCaseNameConstant,
			queryError:  execshell.CommandExecutionError{Cause: errors.New("dpkg-query not found")},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingAptExecutor{
				dpkgQueryResult: testCase.queryResult,
				dpkgQueryError:  testCase.queryError,
			}
			client, creationError := aptcli.NewClient(executor)
			require.NoError(testInstance, creationError)

			installed, queryError := client.IsInstalled(context.Background(), testPackageNameConstant)
			if testCase.expectError {
				require.Error(testInstance, queryError)
				require.IsType(testInstance, aptcli.OperationError{}, queryError)
				return
			}

			require.NoError(testInstance, queryError)
			require.Equal(testInstance, testCase.expectedResult, installed)
			require.Len(testInstance, executor.dpkgQueryQueries, 1)
			require.Contains(testInstance, executor.dpkgQueryQueries[0], testPackageNameConstant)
		})
	}
}

func TestClientIsInstalledRejectsEmptyPackageName(testInstance *testing.T) {
	client, creationError := aptcli.NewClient(&recordingAptExecutor{})
	require.NoError(testInstance, creationError)

	_, queryError := client.IsInstalled(context.Background(), "  ")
	require.Error(testInstance, queryError)
	require.IsType(testInstance, aptcli.InvalidInputError{}, queryError)
}

func TestClientMutationArguments(testInstance *testing.T) {
	testCases := []struct {
		name              string
		invoke            func(client *aptcli.Client) error
		expectedArguments []string
	}{
		{
			name: "refresh_index",
			invoke: func(client *aptcli.Client) error {
				return client.RefreshIndex(context.Background())
			},
			expectedArguments: []string{"update"},
		},
		{
			name: "install",
			invoke: func(client *aptcli.Client) error {
				return client.Install(context.Background(), testPackageNameConstant)
			},
			expectedArguments: []string{"install", "-y", testPackageNameConstant},
		},
		{
			name: "purge",
			invoke: func(client *aptcli.Client) error {
				return client.Purge(context.Background(), testPackageNameConstant)
			},
			expectedArguments: []string{"purge", "-y", testPackageNameConstant},
		},
		{
			name: "autoremove",
			invoke: func(client *aptcli.Client) error {
				return client.Autoremove(context.Background())
			},
			expectedArguments: []string{"autoremove", "-y"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingAptExecutor{}
			client, creationError := aptcli.NewClient(executor)
			require.NoError(testInstance, creationError)

			require.NoError(testInstance, testCase.invoke(client))
			require.Len(testInstance, executor.aptGetCommands, 1)
			require.Equal(testInstance, testCase.expectedArguments, executor.aptGetCommands[0])
		})
	}
}

func TestClientMutationFailuresWrapOperationError(testInstance *testing.T) {
	executor := &recordingAptExecutor{
		aptGetErrors: []error{execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandAptGet},
			Result:  execshell.ExecutionResult{ExitCode: 100},
		}},
	}
	client, creationError := aptcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	purgeError := client.Purge(context.Background(), testPackageNameConstant)
	require.Error(testInstance, purgeError)
	require.IsType(testInstance, aptcli.OperationError{}, purgeError)

	var commandFailure execshell.CommandFailedError
	require.True(testInstance, errors.As(purgeError, &commandFailure))
}
