package migrate

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/flatmove/internal/aptcli"
	"github.com/temirov/flatmove/internal/execshell"
	"github.com/temirov/flatmove/internal/flatpakcli"
	"github.com/temirov/flatmove/internal/preflight"
	"github.com/temirov/flatmove/internal/report"
	"github.com/temirov/flatmove/internal/retry"
	"github.com/temirov/flatmove/internal/runlock"
	"github.com/temirov/flatmove/internal/snapcli"
	"github.com/temirov/flatmove/internal/ui"
	"github.com/temirov/flatmove/internal/utils"
	"github.com/temirov/flatmove/internal/utils/flags"
)

const (
	commandUseConstant              = "flatmove"
	commandShortDescriptionConstant = "Migrate desktop applications from APT and Snap to Flatpak"
	commandLongDescriptionConstant  = "flatmove removes legacy APT and Snap installations of cataloged desktop applications and installs their Flatpak equivalents from the configured remote, one application at a time, reporting every outcome at the end of the run."

	installOnlyMissingFlagNameConstant  = "install-only-missing"
	installOnlyMissingFlagUsageConstant = "Skip applications whose Flatpak build is already installed"

	aptClientCreationErrorTemplateConstant     = "unable to construct apt client: %w"
	snapClientCreationErrorTemplateConstant    = "unable to construct snap client: %w"
	flatpakClientCreationErrorTemplateConstant = "unable to construct flatpak client: %w"
	runFailedErrorTemplateConstant             = "migration run failed: %w"

	logMessageLockReleaseFailedConstant  = "Run lock release failed"
	logMessageReportRenderFailedConstant = "Report rendering failed"
	logMessageRelaunchedConstant         = "Re-launched inside a terminal emulator, exiting parent process"
	logMessageElevatedConstant           = "Re-launched through sudo, exiting parent process"
	logMessageConfigurationFileConstant  = "Using configuration file"
	logFieldConfigurationFileConstant    = "config_file"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandExecutor enumerates the execshell operations the migration command relies on.
type CommandExecutor interface {
	ExecuteAptGet(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteDpkgQuery(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteSnap(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteFlatpak(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteSudo(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteProgram(executionContext context.Context, programName string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// PreflightChecker validates privileges and terminal availability before a run.
type PreflightChecker interface {
	EnsurePrivileged(executionContext context.Context, commandArguments []string) (bool, error)
	EnsureInteractiveTerminal(executionContext context.Context, commandArguments []string) (bool, error)
}

// RunGuard provides single-instance locking for a migration run.
type RunGuard interface {
	Acquire() error
	Release() error
	InstallSignalHandler(notifications chan os.Signal, exitFunc func(exitCode int))
}

// MigrationExecutor runs the catalog migration sequence.
type MigrationExecutor interface {
	Execute(executionContext context.Context, options RunOptions) (*report.Aggregator, error)
}

// ServiceProvider constructs a migration executor from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (MigrationExecutor, error)

// GuardProvider constructs a run guard for the configured lock path.
type GuardProvider func(lockFilePath string, logger *zap.Logger) (RunGuard, error)

// CommandBuilder assembles the flatmove migration command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     CommandExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() Configuration
	ServiceProvider              ServiceProvider
	GuardProvider                GuardProvider
	PreflightChecker             PreflightChecker
	OutputWriter                 io.Writer
	ProcessArguments             []string
	SignalNotifications          chan os.Signal
	ExitFunc                     func(exitCode int)

	installOnlyMissing bool
}

// Build constructs the migration command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.run,
	}

	flags.AddToggleFlag(command.Flags(), &builder.installOnlyMissing, installOnlyMissingFlagNameConstant, false, installOnlyMissingFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger(command)

	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	preflightChecker := builder.resolvePreflightChecker(logger, executor)
	elevated, privilegeError := preflightChecker.EnsurePrivileged(command.Context(), builder.resolveProcessArguments())
	if privilegeError != nil {
		return privilegeError
	}
	if elevated {
		logger.Info(logMessageElevatedConstant)
		return nil
	}

	relaunched, terminalError := preflightChecker.EnsureInteractiveTerminal(command.Context(), builder.resolveProcessArguments())
	if terminalError != nil {
		return terminalError
	}
	if relaunched {
		logger.Info(logMessageRelaunchedConstant)
		return nil
	}

	guard, guardError := builder.resolveGuard(configuration.LockPath, logger)
	if guardError != nil {
		return guardError
	}
	if acquireError := guard.Acquire(); acquireError != nil {
		return acquireError
	}
	defer func() {
		if releaseError := guard.Release(); releaseError != nil {
			logger.Error(logMessageLockReleaseFailedConstant, zap.Error(releaseError))
		}
	}()
	guard.InstallSignalHandler(builder.SignalNotifications, builder.ExitFunc)

	service, serviceError := builder.resolveService(logger, executor, configuration)
	if serviceError != nil {
		return serviceError
	}

	aggregator, runError := service.Execute(command.Context(), RunOptions{InstallOnlyMissing: builder.installOnlyMissing})
	if runError != nil {
		return fmt.Errorf(runFailedErrorTemplateConstant, runError)
	}

	if renderError := aggregator.Render(builder.resolveOutputWriter()); renderError != nil {
		logger.Warn(logMessageReportRenderFailedConstant, zap.Error(renderError))
	}

	return nil
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger(command *cobra.Command) *zap.Logger {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if command == nil {
		return logger
	}

	contextAccessor := utils.NewCommandContextAccessor()
	if logLevel, available := contextAccessor.LogLevel(command.Context()); available {
		if strings.EqualFold(logLevel, string(utils.LogLevelDebug)) {
			logger = logger.WithOptions(zap.IncreaseLevel(zapcore.DebugLevel))
		}
	}
	if configurationFilePath, available := contextAccessor.ConfigurationFilePath(command.Context()); available && len(configurationFilePath) > 0 {
		logger.Debug(logMessageConfigurationFileConstant, zap.String(logFieldConfigurationFileConstant, configurationFilePath))
	}
	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
	if creationError != nil {
		return nil, creationError
	}
	if humanReadableLogging {
		shellExecutor.SetEventObserver(ui.NewConsoleCommandEventLogger(logger))
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolvePreflightChecker(logger *zap.Logger, executor CommandExecutor) PreflightChecker {
	if builder.PreflightChecker != nil {
		return builder.PreflightChecker
	}
	return preflight.NewCheck(logger, nil, executor)
}

func (builder *CommandBuilder) resolveGuard(lockFilePath string, logger *zap.Logger) (RunGuard, error) {
	if builder.GuardProvider != nil {
		return builder.GuardProvider(lockFilePath, logger)
	}
	return runlock.NewGuard(lockFilePath, logger)
}

func (builder *CommandBuilder) resolveService(logger *zap.Logger, executor CommandExecutor, configuration Configuration) (MigrationExecutor, error) {
	aptClient, aptClientError := aptcli.NewClient(executor)
	if aptClientError != nil {
		return nil, fmt.Errorf(aptClientCreationErrorTemplateConstant, aptClientError)
	}

	snapClient, snapClientError := snapcli.NewClient(executor)
	if snapClientError != nil {
		return nil, fmt.Errorf(snapClientCreationErrorTemplateConstant, snapClientError)
	}

	flatpakClient, flatpakClientError := flatpakcli.NewClient(executor)
	if flatpakClientError != nil {
		return nil, fmt.Errorf(flatpakClientCreationErrorTemplateConstant, flatpakClientError)
	}

	dependencies := ServiceDependencies{
		Logger:         logger,
		AptManager:     aptClient,
		SnapManager:    snapClient,
		FlatpakManager: flatpakClient,
		Retrier: retry.Policy{
			MaxAttempts: configuration.InstallAttempts,
			Delay:       configuration.InstallRetryDelay(),
		},
		Configuration: configuration,
	}

	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}
	return NewService(dependencies)
}

func (builder *CommandBuilder) resolveProcessArguments() []string {
	if builder.ProcessArguments != nil {
		return builder.ProcessArguments
	}
	if len(os.Args) > 1 {
		return os.Args[1:]
	}
	return nil
}

func (builder *CommandBuilder) resolveOutputWriter() io.Writer {
	if builder.OutputWriter != nil {
		return builder.OutputWriter
	}
	return utils.NewFlushingWriter(os.Stdout)
}
