package runlock

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

const (
	lockFilePermissionsConstant            = 0o644
	alreadyRunningErrorTemplateConstant    = "another run is already in progress (lock marker %s exists; remove it manually if no run is active)"
	lockCreationErrorTemplateConstant      = "unable to create lock marker %s: %w"
	lockReleaseErrorTemplateConstant       = "unable to remove lock marker %s: %w"
	lockPathNotConfiguredMessageConstant   = "lock path not configured"
	signalReceivedLogMessageConstant       = "termination signal received, releasing run lock"
	signalReleaseFailedLogMessageConstant  = "run lock release failed during signal handling"
	logFieldSignalConstant                 = "signal"
	logFieldLockPathConstant               = "lock_path"
	signalExitCodeConstant                 = 1
)

// ErrLockPathNotConfigured indicates the guard was constructed without a lock path.
var ErrLockPathNotConfigured = errors.New(lockPathNotConfiguredMessageConstant)

// AlreadyRunningError reports that the lock marker is held by another run.
type AlreadyRunningError struct {
	LockFilePath string
}

// Error describes the lock contention.
func (alreadyRunningError AlreadyRunningError) Error() string {
	return fmt.Sprintf(alreadyRunningErrorTemplateConstant, alreadyRunningError.LockFilePath)
}

// Guard is a single-instance lock backed by a marker file at a well-known path.
//
// The marker's presence is the sole persisted state: Acquire fails fast when
// it exists and Release removes it. Release is idempotent and is additionally
// registered for interrupt and termination signals so every exit path drops
// the lock.
type Guard struct {
	lockFilePath string
	logger       *zap.Logger
	stateMutex   sync.Mutex
	acquired     bool
}

// NewGuard constructs a Guard for the provided lock marker path.
func NewGuard(lockFilePath string, logger *zap.Logger) (*Guard, error) {
	if len(lockFilePath) == 0 {
		return nil, ErrLockPathNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{lockFilePath: lockFilePath, logger: logger}, nil
}

// Acquire creates the lock marker, failing with AlreadyRunningError when it already exists.
func (guard *Guard) Acquire() error {
	guard.stateMutex.Lock()
	defer guard.stateMutex.Unlock()

	lockFile, openError := os.OpenFile(guard.lockFilePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, lockFilePermissionsConstant)
	if openError != nil {
		if errors.Is(openError, os.ErrExist) {
			return AlreadyRunningError{LockFilePath: guard.lockFilePath}
		}
		return fmt.Errorf(lockCreationErrorTemplateConstant, guard.lockFilePath, openError)
	}

	_, _ = lockFile.WriteString(strconv.Itoa(os.Getpid()))
	closeError := lockFile.Close()
	if closeError != nil {
		_ = os.Remove(guard.lockFilePath)
		return fmt.Errorf(lockCreationErrorTemplateConstant, guard.lockFilePath, closeError)
	}

	guard.acquired = true
	return nil
}

// Release removes the lock marker. Calling Release without a held lock is a no-op.
func (guard *Guard) Release() error {
	guard.stateMutex.Lock()
	defer guard.stateMutex.Unlock()

	if !guard.acquired {
		return nil
	}
	guard.acquired = false

	removeError := os.Remove(guard.lockFilePath)
	if removeError != nil && !errors.Is(removeError, os.ErrNotExist) {
		return fmt.Errorf(lockReleaseErrorTemplateConstant, guard.lockFilePath, removeError)
	}
	return nil
}

// InstallSignalHandler releases the lock and invokes exitFunc when an interrupt or termination signal arrives.
//
// A nil notifications channel installs the default os/signal subscription;
// tests supply their own channel to drive the handler deterministically.
func (guard *Guard) InstallSignalHandler(notifications chan os.Signal, exitFunc func(exitCode int)) {
	if exitFunc == nil {
		exitFunc = os.Exit
	}
	if notifications == nil {
		notifications = make(chan os.Signal, 1)
		signal.Notify(notifications, os.Interrupt, syscall.SIGTERM)
	}

	go func() {
		receivedSignal, channelOpen := <-notifications
		if !channelOpen {
			return
		}

		guard.logger.Warn(
			signalReceivedLogMessageConstant,
			zap.String(logFieldSignalConstant, receivedSignal.String()),
			zap.String(logFieldLockPathConstant, guard.lockFilePath),
		)

		if releaseError := guard.Release(); releaseError != nil {
			guard.logger.Error(signalReleaseFailedLogMessageConstant, zap.Error(releaseError))
		}

		exitFunc(signalExitCodeConstant)
	}()
}
