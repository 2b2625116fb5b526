package migrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/flatmove/internal/report"
	"github.com/temirov/flatmove/internal/retry"
)

const (
	flatpakRuntimePackageNameConstant = "flatpak"

	dependencyCleanupDisplayNameConstant = "Dependency cleanup"
	dependencyCleanupDetailConstant      = "apt-get autoremove"

	aptRemovalDetailConstant         = "removed apt package"
	snapRemovalDetailConstant        = "removed snap package"
	aptInstallDetailConstant         = "installed via apt"
	aptAlreadyPresentDetailConstant  = "apt package already installed"
	skipDetailConstant               = "target already installed"
	installOperationLabelTemplate    = "flatpak install %s"

	fatalRunErrorTemplateConstant           = "migration aborted during %s: %s"
	loggerNotConfiguredMessageConstant      = "logger not configured"
	aptManagerNotConfiguredMessageConstant  = "apt package manager not configured"
	snapManagerNotConfiguredMessage         = "snap package manager not configured"
	flatpakManagerNotConfiguredMessage      = "flatpak package manager not configured"
	installRetrierNotConfiguredMessage      = "install retrier not configured"
	emptyCatalogMessageConstant             = "application catalog is empty"

	logMessageRunStartedConstant          = "Migration run started"
	logMessageProcessingEntryConstant     = "Processing application"
	logMessageEntrySkippedConstant        = "Application skipped, target already installed"
	logMessageLegacyRemovedConstant       = "Legacy installation removed"
	logMessageTargetInstalledConstant     = "Target installation completed"
	logMessageTargetAlreadyPresentConst   = "Target already present"
	logMessageInstallExhaustedConstant    = "Target installation failed after retries"
	logMessageDependencyCleanupConstant   = "Consolidated dependency cleanup completed"
	logFieldApplicationConstant           = "application"
	logFieldLegacySourceConstant          = "legacy_source"
	logFieldEntryCountConstant            = "entry_count"
	logFieldInstallOnlyMissingConstant    = "install_only_missing"
	legacySourceAptConstant               = "apt"
	legacySourceSnapConstant              = "snap"
)

// RunStage identifies the point in a run where a fatal error occurred.
type RunStage string

// Stages at which a run can abort fatally.
const (
	RunStageRefreshIndex      RunStage = "package-index-refresh"
	RunStageRuntimeInstall    RunStage = "flatpak-runtime-install"
	RunStageEnsureRemote      RunStage = "remote-registration"
	RunStageLegacyRemoval     RunStage = "legacy-removal"
	RunStageTargetQuery       RunStage = "target-presence-query"
	RunStageAptOnlyInstall    RunStage = "apt-only-install"
	RunStageDependencyCleanup RunStage = "dependency-cleanup"
)

// FatalRunError aborts the remainder of a migration run.
//
// Remaining catalog entries are left untouched and no report is rendered;
// recoverable per-entry install failures never produce this type.
type FatalRunError struct {
	Stage RunStage
	Cause error
}

// Error describes the aborted stage.
func (fatalError FatalRunError) Error() string {
	return fmt.Sprintf(fatalRunErrorTemplateConstant, fatalError.Stage, fatalError.Cause)
}

// Unwrap exposes the underlying cause.
func (fatalError FatalRunError) Unwrap() error {
	return fatalError.Cause
}

// RunOptions carries invocation-level switches for a migration run.
type RunOptions struct {
	InstallOnlyMissing bool
}

// AptPackageManager queries and mutates APT-managed packages.
type AptPackageManager interface {
	IsInstalled(executionContext context.Context, packageName string) (bool, error)
	RefreshIndex(executionContext context.Context) error
	Install(executionContext context.Context, packageName string) error
	Purge(executionContext context.Context, packageName string) error
	Autoremove(executionContext context.Context) error
}

// SnapPackageManager queries and removes snap-managed packages.
type SnapPackageManager interface {
	IsInstalled(executionContext context.Context, snapName string) (bool, error)
	Remove(executionContext context.Context, snapName string) error
}

// FlatpakPackageManager manages the target Flatpak source.
type FlatpakPackageManager interface {
	EnsureRemote(executionContext context.Context, remoteName string, remoteURL string) error
	IsInstalled(executionContext context.Context, applicationID string) (bool, error)
	Install(executionContext context.Context, remoteName string, applicationID string) error
}

// InstallRetrier retries a target install operation with bounded attempts.
type InstallRetrier interface {
	Run(executionContext context.Context, operationLabel string, operation retry.Operation) error
}

// ServiceDependencies enumerates collaborators required by the migration service.
type ServiceDependencies struct {
	Logger         *zap.Logger
	AptManager     AptPackageManager
	SnapManager    SnapPackageManager
	FlatpakManager FlatpakPackageManager
	Retrier        InstallRetrier
	Configuration  Configuration
}

// Service walks the application catalog one entry at a time, removing legacy
// installations and installing Flatpak equivalents.
type Service struct {
	logger         *zap.Logger
	aptManager     AptPackageManager
	snapManager    SnapPackageManager
	flatpakManager FlatpakPackageManager
	retrier        InstallRetrier
	configuration  Configuration
}

// NewService validates dependencies and constructs the migration service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, errors.New(loggerNotConfiguredMessageConstant)
	}
	if dependencies.AptManager == nil {
		return nil, errors.New(aptManagerNotConfiguredMessageConstant)
	}
	if dependencies.SnapManager == nil {
		return nil, errors.New(snapManagerNotConfiguredMessage)
	}
	if dependencies.FlatpakManager == nil {
		return nil, errors.New(flatpakManagerNotConfiguredMessage)
	}
	if dependencies.Retrier == nil {
		return nil, errors.New(installRetrierNotConfiguredMessage)
	}

	return &Service{
		logger:         dependencies.Logger,
		aptManager:     dependencies.AptManager,
		snapManager:    dependencies.SnapManager,
		flatpakManager: dependencies.FlatpakManager,
		retrier:        dependencies.Retrier,
		configuration:  dependencies.Configuration.Sanitize(),
	}, nil
}

// Execute runs the full migration sequence and returns the outcome aggregator.
//
// The aggregator is returned even on fatal errors so callers can inspect the
// outcomes produced before the abort; rendering an incomplete report is the
// caller's decision to avoid, not this method's.
func (service *Service) Execute(executionContext context.Context, options RunOptions) (*report.Aggregator, error) {
	aggregator := report.NewAggregator()

	catalogEntries, catalogError := service.configuration.EffectiveCatalog()
	if catalogError != nil {
		return aggregator, catalogError
	}
	if len(catalogEntries) == 0 {
		return aggregator, errors.New(emptyCatalogMessageConstant)
	}

	service.logger.Info(
		logMessageRunStartedConstant,
		zap.Int(logFieldEntryCountConstant, len(catalogEntries)),
		zap.Bool(logFieldInstallOnlyMissingConstant, options.InstallOnlyMissing),
	)

	if refreshError := service.aptManager.RefreshIndex(executionContext); refreshError != nil {
		return aggregator, FatalRunError{Stage: RunStageRefreshIndex, Cause: refreshError}
	}

	if runtimeError := service.ensureFlatpakRuntime(executionContext); runtimeError != nil {
		return aggregator, runtimeError
	}

	if remoteError := service.flatpakManager.EnsureRemote(executionContext, service.configuration.RemoteName, service.configuration.RemoteURL); remoteError != nil {
		return aggregator, FatalRunError{Stage: RunStageEnsureRemote, Cause: remoteError}
	}

	removalPerformed := false
	for _, catalogEntry := range catalogEntries {
		service.logger.Info(logMessageProcessingEntryConstant, zap.String(logFieldApplicationConstant, catalogEntry.DisplayName))

		if catalogEntry.AptOnly {
			if aptOnlyError := service.processAptOnlyEntry(executionContext, catalogEntry, aggregator); aptOnlyError != nil {
				return aggregator, aptOnlyError
			}
			continue
		}

		entryRemoved, entryError := service.processEntry(executionContext, catalogEntry, options, aggregator)
		if entryError != nil {
			return aggregator, entryError
		}
		if entryRemoved {
			removalPerformed = true
		}
	}

	if removalPerformed {
		if cleanupError := service.aptManager.Autoremove(executionContext); cleanupError != nil {
			aggregator.Record(report.Outcome{
				DisplayName: dependencyCleanupDisplayNameConstant,
				Phase:       report.OutcomePhaseFailed,
				Detail:      cleanupError.Error(),
			})
			return aggregator, FatalRunError{Stage: RunStageDependencyCleanup, Cause: cleanupError}
		}

		service.logger.Info(logMessageDependencyCleanupConstant)
		aggregator.Record(report.Outcome{
			DisplayName: dependencyCleanupDisplayNameConstant,
			Phase:       report.OutcomePhaseRemovedLegacy,
			Detail:      dependencyCleanupDetailConstant,
		})
	}

	return aggregator, nil
}

func (service *Service) ensureFlatpakRuntime(executionContext context.Context) error {
	if installError := service.aptManager.Install(executionContext, flatpakRuntimePackageNameConstant); installError != nil {
		return FatalRunError{Stage: RunStageRuntimeInstall, Cause: installError}
	}
	return nil
}

// processEntry drives the per-entry state machine and reports whether any
// legacy removal happened for the entry.
func (service *Service) processEntry(executionContext context.Context, catalogEntry CatalogEntry, options RunOptions, aggregator *report.Aggregator) (bool, error) {
	if options.InstallOnlyMissing {
		targetPresent, presenceError := service.flatpakManager.IsInstalled(executionContext, catalogEntry.FlatpakApplicationID)
		if presenceError != nil {
			return false, FatalRunError{Stage: RunStageTargetQuery, Cause: presenceError}
		}
		if targetPresent {
			service.logger.Info(logMessageEntrySkippedConstant, zap.String(logFieldApplicationConstant, catalogEntry.DisplayName))
			aggregator.Record(report.Outcome{
				DisplayName: catalogEntry.DisplayName,
				Phase:       report.OutcomePhaseSkipped,
				Detail:      skipDetailConstant,
			})
			return false, nil
		}
	}

	removalPerformed, removalError := service.removeLegacyInstallations(executionContext, catalogEntry, aggregator)
	if removalError != nil {
		return removalPerformed, removalError
	}

	targetPresent, presenceError := service.flatpakManager.IsInstalled(executionContext, catalogEntry.FlatpakApplicationID)
	if presenceError != nil {
		return removalPerformed, FatalRunError{Stage: RunStageTargetQuery, Cause: presenceError}
	}
	if targetPresent {
		service.logger.Info(logMessageTargetAlreadyPresentConst, zap.String(logFieldApplicationConstant, catalogEntry.DisplayName))
		aggregator.Record(report.Outcome{
			DisplayName: catalogEntry.DisplayName,
			Phase:       report.OutcomePhaseAlreadyPresent,
		})
		return removalPerformed, nil
	}

	operationLabel := fmt.Sprintf(installOperationLabelTemplate, catalogEntry.FlatpakApplicationID)
	installError := service.retrier.Run(executionContext, operationLabel, func(attemptContext context.Context) error {
		return service.flatpakManager.Install(attemptContext, service.configuration.RemoteName, catalogEntry.FlatpakApplicationID)
	})
	if installError != nil {
		if errors.Is(installError, context.Canceled) || errors.Is(installError, context.DeadlineExceeded) {
			return removalPerformed, installError
		}

		service.logger.Warn(
			logMessageInstallExhaustedConstant,
			zap.String(logFieldApplicationConstant, catalogEntry.DisplayName),
			zap.Error(installError),
		)
		aggregator.Record(report.Outcome{
			DisplayName: catalogEntry.DisplayName,
			Phase:       report.OutcomePhaseFailed,
			Detail:      installError.Error(),
		})
		return removalPerformed, nil
	}

	service.logger.Info(logMessageTargetInstalledConstant, zap.String(logFieldApplicationConstant, catalogEntry.DisplayName))
	aggregator.Record(report.Outcome{
		DisplayName: catalogEntry.DisplayName,
		Phase:       report.OutcomePhaseInstalledTarget,
	})
	return removalPerformed, nil
}

// removeLegacyInstallations purges the entry from each legacy source where it
// is installed. A removal failure leaves the run in an unsafe mixed state and
// is therefore fatal.
func (service *Service) removeLegacyInstallations(executionContext context.Context, catalogEntry CatalogEntry, aggregator *report.Aggregator) (bool, error) {
	removalPerformed := false

	aptPackageName := strings.TrimSpace(catalogEntry.AptPackageName)
	if len(aptPackageName) > 0 {
		aptInstalled, aptQueryError := service.aptManager.IsInstalled(executionContext, aptPackageName)
		if aptQueryError != nil {
			return removalPerformed, FatalRunError{Stage: RunStageLegacyRemoval, Cause: aptQueryError}
		}
		if aptInstalled {
			if purgeError := service.aptManager.Purge(executionContext, aptPackageName); purgeError != nil {
				aggregator.Record(report.Outcome{
					DisplayName: catalogEntry.DisplayName,
					Phase:       report.OutcomePhaseFailed,
					Detail:      purgeError.Error(),
				})
				return removalPerformed, FatalRunError{Stage: RunStageLegacyRemoval, Cause: purgeError}
			}

			service.logger.Info(
				logMessageLegacyRemovedConstant,
				zap.String(logFieldApplicationConstant, catalogEntry.DisplayName),
				zap.String(logFieldLegacySourceConstant, legacySourceAptConstant),
			)
			aggregator.Record(report.Outcome{
				DisplayName: catalogEntry.DisplayName,
				Phase:       report.OutcomePhaseRemovedLegacy,
				Detail:      aptRemovalDetailConstant,
			})
			removalPerformed = true
		}
	}

	snapPackageName := strings.TrimSpace(catalogEntry.SnapPackageName)
	if len(snapPackageName) > 0 {
		snapInstalled, snapQueryError := service.snapManager.IsInstalled(executionContext, snapPackageName)
		if snapQueryError != nil {
			return removalPerformed, FatalRunError{Stage: RunStageLegacyRemoval, Cause: snapQueryError}
		}
		if snapInstalled {
			if removeError := service.snapManager.Remove(executionContext, snapPackageName); removeError != nil {
				aggregator.Record(report.Outcome{
					DisplayName: catalogEntry.DisplayName,
					Phase:       report.OutcomePhaseFailed,
					Detail:      removeError.Error(),
				})
				return removalPerformed, FatalRunError{Stage: RunStageLegacyRemoval, Cause: removeError}
			}

			service.logger.Info(
				logMessageLegacyRemovedConstant,
				zap.String(logFieldApplicationConstant, catalogEntry.DisplayName),
				zap.String(logFieldLegacySourceConstant, legacySourceSnapConstant),
			)
			aggregator.Record(report.Outcome{
				DisplayName: catalogEntry.DisplayName,
				Phase:       report.OutcomePhaseRemovedLegacy,
				Detail:      snapRemovalDetailConstant,
			})
			removalPerformed = true
		}
	}

	return removalPerformed, nil
}

// processAptOnlyEntry installs a catalog entry that has no Flatpak equivalent
// directly through APT. No retry policy applies and a failure is fatal.
func (service *Service) processAptOnlyEntry(executionContext context.Context, catalogEntry CatalogEntry, aggregator *report.Aggregator) error {
	aptInstalled, queryError := service.aptManager.IsInstalled(executionContext, catalogEntry.AptPackageName)
	if queryError != nil {
		return FatalRunError{Stage: RunStageAptOnlyInstall, Cause: queryError}
	}
	if aptInstalled {
		service.logger.Info(logMessageTargetAlreadyPresentConst, zap.String(logFieldApplicationConstant, catalogEntry.DisplayName))
		aggregator.Record(report.Outcome{
			DisplayName: catalogEntry.DisplayName,
			Phase:       report.OutcomePhaseAlreadyPresent,
			Detail:      aptAlreadyPresentDetailConstant,
		})
		return nil
	}

	if installError := service.aptManager.Install(executionContext, catalogEntry.AptPackageName); installError != nil {
		aggregator.Record(report.Outcome{
			DisplayName: catalogEntry.DisplayName,
			Phase:       report.OutcomePhaseFailed,
			Detail:      installError.Error(),
		})
		return FatalRunError{Stage: RunStageAptOnlyInstall, Cause: installError}
	}

	service.logger.Info(logMessageTargetInstalledConstant, zap.String(logFieldApplicationConstant, catalogEntry.DisplayName))
	aggregator.Record(report.Outcome{
		DisplayName: catalogEntry.DisplayName,
		Phase:       report.OutcomePhaseInstalledTarget,
		Detail:      aptInstallDetailConstant,
	})
	return nil
}
