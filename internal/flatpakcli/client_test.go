package flatpakcli_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/flatmove/internal/execshell"
	"github.com/temirov/flatmove/internal/flatpakcli"
)

const (
	testRemoteNameConstant           = "flathub"
	testRemoteURLConstant            = "https://dl.flathub.org/repo/flathub.flatpakrepo"
	testApplicationIDConstant        = "org.videolan.VLC"
	testApplicationListingConstant   = "org.mozilla.firefox\norg.videolan.VLC\norg.gimp.GIMP\n"
	testInstalledCaseNameConstant    = "application_installed"
	testNotInstalledCaseNameConstant = "application_not_installed"
	testSubstringCaseNameConstant    = "substring_false_positive"
	testListFailureCaseNameConstant  = "list_failure"
)

type recordingFlatpakExecutor struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands [][]string
}

func (executor *recordingFlatpakExecutor) ExecuteFlatpak(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details.Arguments)
	return executor.executionResult, executor.executionError
}

func TestClientRequiresExecutor(testInstance *testing.T) {
	client, creationError := flatpakcli.NewClient(nil)
	require.Nil(testInstance, client)
	require.ErrorIs(testInstance, creationError, flatpakcli.ErrExecutorNotConfigured)
}

func TestClientEnsureRemote(testInstance *testing.T) {
	executor := &recordingFlatpakExecutor{}
	client, creationError := flatpakcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, client.EnsureRemote(context.Background(), testRemoteNameConstant, testRemoteURLConstant))
	require.Equal(
		testInstance,
		[][]string{{"remote-add", "--if-not-exists", testRemoteNameConstant, testRemoteURLConstant}},
		executor.recordedCommands,
	)
}

func TestClientEnsureRemoteValidatesInputs(testInstance *testing.T) {
	client, creationError := flatpakcli.NewClient(&recordingFlatpakExecutor{})
	require.NoError(testInstance, creationError)

	require.IsType(testInstance, flatpakcli.InvalidInputError{}, client.EnsureRemote(context.Background(), " ", testRemoteURLConstant))
	require.IsType(testInstance, flatpakcli.InvalidInputError{}, client.EnsureRemote(context.Background(), testRemoteNameConstant, ""))
}

func TestClientIsInstalled(testInstance *testing.T) {
	testCases := []struct {
		name           string
		applicationID  string
		listingOutput  string
		executionError error
		expectedResult bool
		expectError    bool
	}{
		{
			name:           testInstalledCaseNameConstant,
			applicationID:  testApplicationIDConstant,
			listingOutput:  testApplicationListingConstant,
			expectedResult: true,
		},
		{
			name:          testNotInstalledCaseNameConstant,
			applicationID: "org.libreoffice.LibreOffice",
			listingOutput: testApplicationListingConstant,
		},
		{
			// Loose listing-based matching: "org.gimp.GIMP" would match a
			// hypothetical "org.gimp.GIMP.Manual" entry just the same.
			name:           testSubstringCaseNameConstant,
			applicationID:  "org.mozilla",
			listingOutput:  testApplicationListingConstant,
			expectedResult: true,
		},
		{
			name:           testListFailureCaseNameConstant,
			applicationID:  testApplicationIDConstant,
			executionError: execshell.CommandExecutionError{Cause: errors.New("flatpak not found")},
			expectError:    true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingFlatpakExecutor{
				executionResult: execshell.ExecutionResult{StandardOutput: testCase.listingOutput},
				executionError:  testCase.executionError,
			}
			client, creationError := flatpakcli.NewClient(executor)
			require.NoError(testInstance, creationError)

			installed, queryError := client.IsInstalled(context.Background(), testCase.applicationID)
			if testCase.expectError {
				require.Error(testInstance, queryError)
				require.IsType(testInstance, flatpakcli.OperationError{}, queryError)
				return
			}

			require.NoError(testInstance, queryError)
			require.Equal(testInstance, testCase.expectedResult, installed)
			require.Equal(testInstance, [][]string{{"list", "--app", "--columns=application"}}, executor.recordedCommands)
		})
	}
}

func TestClientInstall(testInstance *testing.T) {
	executor := &recordingFlatpakExecutor{}
	client, creationError := flatpakcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, client.Install(context.Background(), testRemoteNameConstant, testApplicationIDConstant))
	require.Equal(
		testInstance,
		[][]string{{"install", "--assumeyes", "--noninteractive", testRemoteNameConstant, testApplicationIDConstant}},
		executor.recordedCommands,
	)
}

func TestClientInstallFailureWrapsOperationError(testInstance *testing.T) {
	executor := &recordingFlatpakExecutor{
		executionError: execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandFlatpak},
			Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: "network unreachable"},
		},
	}
	client, creationError := flatpakcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	installError := client.Install(context.Background(), testRemoteNameConstant, testApplicationIDConstant)
	require.Error(testInstance, installError)
	require.IsType(testInstance, flatpakcli.OperationError{}, installError)
}
