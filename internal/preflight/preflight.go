package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/temirov/flatmove/internal/execshell"
)

const (
	privilegesRequiredMessageConstant    = "root privileges required; re-run the tool with sudo"
	noInteractiveTerminalMessageConstant = "no usable interactive terminal found"
	displayEnvironmentVariableConstant   = "DISPLAY"
	waylandEnvironmentVariableConstant   = "WAYLAND_DISPLAY"
	terminalExecuteFlagConstant          = "-e"
	relaunchingLogMessageConstant        = "re-launching inside terminal emulator"
	elevatingLogMessageConstant          = "re-launching with elevated privileges through sudo"
	elevationFailedErrorTemplateConstant = "%w: %v"
	logFieldTerminalEmulatorConstant     = "terminal_emulator"
	logFieldExecutablePathConstant       = "executable_path"
	rootEffectiveUserIdentifierConstant  = 0
)

// Ordered preference list for terminal emulators used during re-launch.
var terminalEmulatorNames = []string{
	"x-terminal-emulator",
	"gnome-terminal",
	"konsole",
	"xfce4-terminal",
	"xterm",
}

// Sentinel pre-flight errors.
var (
	ErrPrivilegesRequired    = errors.New(privilegesRequiredMessageConstant)
	ErrNoInteractiveTerminal = errors.New(noInteractiveTerminalMessageConstant)
)

// ProgramLocator resolves executable names to paths.
type ProgramLocator interface {
	LookPath(programName string) (string, error)
}

// OSProgramLocator resolves executables using the process PATH.
type OSProgramLocator struct{}

// LookPath implements ProgramLocator via os/exec.
func (OSProgramLocator) LookPath(programName string) (string, error) {
	return exec.LookPath(programName)
}

// Relauncher re-executes the tool through sudo or inside a terminal emulator.
type Relauncher interface {
	ExecuteSudo(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteProgram(executionContext context.Context, programName string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Check performs environment capability checks ahead of any package operation.
type Check struct {
	logger               *zap.Logger
	programLocator       ProgramLocator
	relauncher           Relauncher
	effectiveUserIDFunc  func() int
	terminalAttachedFunc func() bool
	environmentLookup    func(variableName string) (string, bool)
	executablePathFunc   func() (string, error)
}

// NewCheck constructs a Check backed by operating-system facilities.
func NewCheck(logger *zap.Logger, programLocator ProgramLocator, relauncher Relauncher) *Check {
	if logger == nil {
		logger = zap.NewNop()
	}
	if programLocator == nil {
		programLocator = OSProgramLocator{}
	}

	return &Check{
		logger:              logger,
		programLocator:      programLocator,
		relauncher:          relauncher,
		effectiveUserIDFunc: os.Geteuid,
		terminalAttachedFunc: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		},
		environmentLookup:  os.LookupEnv,
		executablePathFunc: os.Executable,
	}
}

// SetEffectiveUserIDFunc overrides effective user id detection.
func (check *Check) SetEffectiveUserIDFunc(effectiveUserIDFunc func() int) {
	if effectiveUserIDFunc != nil {
		check.effectiveUserIDFunc = effectiveUserIDFunc
	}
}

// SetTerminalAttachedFunc overrides terminal detection.
func (check *Check) SetTerminalAttachedFunc(terminalAttachedFunc func() bool) {
	if terminalAttachedFunc != nil {
		check.terminalAttachedFunc = terminalAttachedFunc
	}
}

// SetEnvironmentLookup overrides environment variable resolution.
func (check *Check) SetEnvironmentLookup(environmentLookup func(variableName string) (string, bool)) {
	if environmentLookup != nil {
		check.environmentLookup = environmentLookup
	}
}

// SetExecutablePathFunc overrides resolution of the running executable path.
func (check *Check) SetExecutablePathFunc(executablePathFunc func() (string, error)) {
	if executablePathFunc != nil {
		check.executablePathFunc = executablePathFunc
	}
}

// EnsurePrivileged verifies the process runs with root privileges, re-executing
// the tool through sudo when it does not. It reports elevated=true when a sudo
// re-launch was issued and the calling process should exit without performing
// package operations. A failed elevation yields ErrPrivilegesRequired.
func (check *Check) EnsurePrivileged(executionContext context.Context, commandArguments []string) (bool, error) {
	if check.effectiveUserIDFunc() == rootEffectiveUserIdentifierConstant {
		return false, nil
	}

	executablePath, executableError := check.executablePathFunc()
	if executableError != nil {
		return false, fmt.Errorf(elevationFailedErrorTemplateConstant, ErrPrivilegesRequired, executableError)
	}

	check.logger.Info(
		elevatingLogMessageConstant,
		zap.String(logFieldExecutablePathConstant, executablePath),
	)

	elevationArguments := append([]string{executablePath}, commandArguments...)
	if _, elevationError := check.relauncher.ExecuteSudo(executionContext, execshell.CommandDetails{Arguments: elevationArguments}); elevationError != nil {
		return false, fmt.Errorf(elevationFailedErrorTemplateConstant, ErrPrivilegesRequired, elevationError)
	}

	return true, nil
}

// EnsureInteractiveTerminal verifies an interactive terminal is attached, re-launching
// the tool inside the first available terminal emulator when a display session is
// present. It reports relaunched=true when a re-launch was issued and the calling
// process should exit without performing package operations.
func (check *Check) EnsureInteractiveTerminal(executionContext context.Context, commandArguments []string) (bool, error) {
	if check.terminalAttachedFunc() {
		return false, nil
	}

	if !check.displaySessionPresent() {
		return false, ErrNoInteractiveTerminal
	}

	emulatorName, locateError := check.locateTerminalEmulator()
	if locateError != nil {
		return false, locateError
	}

	executablePath, executableError := check.executablePathFunc()
	if executableError != nil {
		return false, executableError
	}

	check.logger.Info(
		relaunchingLogMessageConstant,
		zap.String(logFieldTerminalEmulatorConstant, emulatorName),
		zap.String(logFieldExecutablePathConstant, executablePath),
	)

	relaunchArguments := append([]string{terminalExecuteFlagConstant, executablePath}, commandArguments...)
	if _, relaunchError := check.relauncher.ExecuteProgram(executionContext, emulatorName, execshell.CommandDetails{Arguments: relaunchArguments}); relaunchError != nil {
		return false, relaunchError
	}

	return true, nil
}

func (check *Check) displaySessionPresent() bool {
	for _, variableName := range []string{displayEnvironmentVariableConstant, waylandEnvironmentVariableConstant} {
		if value, present := check.environmentLookup(variableName); present && len(value) > 0 {
			return true
		}
	}
	return false
}

func (check *Check) locateTerminalEmulator() (string, error) {
	for _, emulatorName := range terminalEmulatorNames {
		if _, lookupError := check.programLocator.LookPath(emulatorName); lookupError == nil {
			return emulatorName, nil
		}
	}
	return "", ErrNoInteractiveTerminal
}
