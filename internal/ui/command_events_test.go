package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/flatmove/internal/execshell"
	"github.com/temirov/flatmove/internal/ui"
)

const (
	testStartedCaseNameConstant          = "started"
	testCompletedCaseNameConstant        = "completed"
	testFailedExitCaseNameConstant       = "failed_exit_code"
	testExecutionFailureCaseNameConstant = "execution_failure"
	testInstallArgumentConstant          = "install"
	testApplicationArgumentConstant      = "org.videolan.VLC"
)

func buildTestCommand() execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandFlatpak,
		Details: execshell.CommandDetails{
			Arguments: []string{testInstallArgumentConstant, testApplicationArgumentConstant},
		},
	}
}

func TestConsoleCommandEventLoggerMessages(testInstance *testing.T) {
	testCases := []struct {
		name            string
		notify          func(eventLogger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: testStartedCaseNameConstant,
			notify: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandStarted(buildTestCommand())
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "Running flatpak install org.videolan.VLC",
		},
		{
			name: testCompletedCaseNameConstant,
			notify: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(buildTestCommand(), execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "Completed flatpak install org.videolan.VLC",
		},
		{
			name: testFailedExitCaseNameConstant,
			notify: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(buildTestCommand(), execshell.ExecutionResult{ExitCode: 1, StandardError: "network unreachable"})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: "flatpak install org.videolan.VLC failed with exit code 1: network unreachable",
		},
		{
			name: testExecutionFailureCaseNameConstant,
			notify: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandExecutionFailed(buildTestCommand(), errors.New("executable not found"))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: "flatpak install org.videolan.VLC failed: executable not found",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)
			eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

			testCase.notify(eventLogger)

			loggedEntries := observedLogs.All()
			require.Len(testInstance, loggedEntries, 1)
			require.Equal(testInstance, testCase.expectedLevel, loggedEntries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, loggedEntries[0].Message)
		})
	}
}
