package migrate

import (
	"strings"
	"time"
)

const (
	defaultRemoteNameConstant               = "flathub"
	defaultRemoteURLConstant                = "https://dl.flathub.org/repo/flathub.flatpakrepo"
	defaultLockPathConstant                 = "/tmp/flatmove.lock"
	defaultInstallAttemptsConstant          = 3
	defaultInstallRetryDelaySecondsConstant = 2

	remoteNameConfigurationKeyConstant               = "tools.migrate.remote_name"
	remoteURLConfigurationKeyConstant                = "tools.migrate.remote_url"
	lockPathConfigurationKeyConstant                 = "tools.migrate.lock_path"
	installAttemptsConfigurationKeyConstant          = "tools.migrate.install_attempts"
	installRetryDelaySecondsConfigurationKeyConstant = "tools.migrate.install_retry_delay_seconds"
)

// Configuration captures persisted settings for the migration command.
type Configuration struct {
	RemoteName               string         `mapstructure:"remote_name"`
	RemoteURL                string         `mapstructure:"remote_url"`
	LockPath                 string         `mapstructure:"lock_path"`
	InstallAttempts          int            `mapstructure:"install_attempts"`
	InstallRetryDelaySeconds int            `mapstructure:"install_retry_delay_seconds"`
	Catalog                  []CatalogEntry `mapstructure:"catalog"`
}

// DefaultConfiguration returns baseline configuration values for the migration command.
func DefaultConfiguration() Configuration {
	return Configuration{
		RemoteName:               defaultRemoteNameConstant,
		RemoteURL:                defaultRemoteURLConstant,
		LockPath:                 defaultLockPathConstant,
		InstallAttempts:          defaultInstallAttemptsConstant,
		InstallRetryDelaySeconds: defaultInstallRetryDelaySecondsConstant,
	}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues() map[string]any {
	return map[string]any{
		remoteNameConfigurationKeyConstant:               defaultRemoteNameConstant,
		remoteURLConfigurationKeyConstant:                defaultRemoteURLConstant,
		lockPathConfigurationKeyConstant:                 defaultLockPathConstant,
		installAttemptsConfigurationKeyConstant:          defaultInstallAttemptsConstant,
		installRetryDelaySecondsConfigurationKeyConstant: defaultInstallRetryDelaySecondsConstant,
	}
}

// Sanitize trims configured values and substitutes defaults for missing or invalid entries.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = defaultRemoteNameConstant
	}
	sanitized.RemoteURL = strings.TrimSpace(configuration.RemoteURL)
	if len(sanitized.RemoteURL) == 0 {
		sanitized.RemoteURL = defaultRemoteURLConstant
	}
	sanitized.LockPath = strings.TrimSpace(configuration.LockPath)
	if len(sanitized.LockPath) == 0 {
		sanitized.LockPath = defaultLockPathConstant
	}
	if sanitized.InstallAttempts <= 0 {
		sanitized.InstallAttempts = defaultInstallAttemptsConstant
	}
	if sanitized.InstallRetryDelaySeconds < 0 {
		sanitized.InstallRetryDelaySeconds = defaultInstallRetryDelaySecondsConstant
	}
	return sanitized
}

// InstallRetryDelay converts the configured pause into a duration.
func (configuration Configuration) InstallRetryDelay() time.Duration {
	return time.Duration(configuration.InstallRetryDelaySeconds) * time.Second
}

// EffectiveCatalog returns the configured catalog override or the embedded defaults.
func (configuration Configuration) EffectiveCatalog() ([]CatalogEntry, error) {
	if len(configuration.Catalog) > 0 {
		return configuration.Catalog, nil
	}
	return DefaultCatalog()
}
