package migrate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/flatmove/internal/migrate"
)

const (
	customRemoteNameConstant = "flathub-beta"
	customLockPathConstant   = "/var/run/flatmove.lock"
)

func TestConfigurationSanitize(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration migrate.Configuration
		expected      migrate.Configuration
	}{
		{
			name:          "empty_values_fall_back_to_defaults",
			configuration: migrate.Configuration{},
			expected:      migrate.DefaultConfiguration(),
		},
		{
			name: "whitespace_values_fall_back_to_defaults",
			configuration: migrate.Configuration{
				RemoteName: "   ",
				RemoteURL:  "\t",
				LockPath:   " ",
			},
			expected: migrate.DefaultConfiguration(),
		},
		{
			name: "invalid_attempt_count_replaced",
			configuration: migrate.Configuration{
				RemoteName:               customRemoteNameConstant,
				RemoteURL:                migrate.DefaultConfiguration().RemoteURL,
				LockPath:                 customLockPathConstant,
				InstallAttempts:          -1,
				InstallRetryDelaySeconds: -5,
			},
			expected: migrate.Configuration{
				RemoteName:               customRemoteNameConstant,
				RemoteURL:                migrate.DefaultConfiguration().RemoteURL,
				LockPath:                 customLockPathConstant,
				InstallAttempts:          3,
				InstallRetryDelaySeconds: 2,
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			require.Equal(subtestInstance, testCase.expected, testCase.configuration.Sanitize())
		})
	}
}

func TestConfigurationInstallRetryDelay(testInstance *testing.T) {
	configuration := migrate.Configuration{InstallRetryDelaySeconds: 2}
	require.Equal(testInstance, 2*time.Second, configuration.InstallRetryDelay())
}

func TestConfigurationEffectiveCatalog(testInstance *testing.T) {
	overrideCatalog := []migrate.CatalogEntry{{DisplayName: "Custom", FlatpakApplicationID: "org.example.Custom"}}

	configuredCatalog, configuredError := migrate.Configuration{Catalog: overrideCatalog}.EffectiveCatalog()
	require.NoError(testInstance, configuredError)
	require.Equal(testInstance, overrideCatalog, configuredCatalog)

	defaultCatalog, defaultError := migrate.Configuration{}.EffectiveCatalog()
	require.NoError(testInstance, defaultError)
	require.Len(testInstance, defaultCatalog, 6)
}

func TestDefaultConfigurationValuesKeys(testInstance *testing.T) {
	defaultValues := migrate.DefaultConfigurationValues()

	require.Equal(testInstance, "flathub", defaultValues["tools.migrate.remote_name"])
	require.Equal(testInstance, "https://dl.flathub.org/repo/flathub.flatpakrepo", defaultValues["tools.migrate.remote_url"])
	require.Equal(testInstance, "/tmp/flatmove.lock", defaultValues["tools.migrate.lock_path"])
	require.Equal(testInstance, 3, defaultValues["tools.migrate.install_attempts"])
	require.Equal(testInstance, 2, defaultValues["tools.migrate.install_retry_delay_seconds"])
}
