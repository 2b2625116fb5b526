package migrate

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	defaultCatalogParseErrorTemplateConstant = "failed to parse embedded catalog: %w"

	// Built-in application catalog. Each entry names the application under
	// every source it may be installed from; apt_only entries have no Flatpak
	// equivalent and are managed through APT alone.
	defaultCatalogDocumentConstant = `
- display_name: Firefox
  flatpak_application_id: org.mozilla.firefox
  apt_package_name: firefox
  snap_package_name: firefox
- display_name: Thunderbird
  flatpak_application_id: org.mozilla.Thunderbird
  apt_package_name: thunderbird
  snap_package_name: thunderbird
- display_name: VLC
  flatpak_application_id: org.videolan.VLC
  apt_package_name: vlc
  snap_package_name: vlc
- display_name: GIMP
  flatpak_application_id: org.gimp.GIMP
  apt_package_name: gimp
  snap_package_name: gimp
- display_name: LibreOffice
  flatpak_application_id: org.libreoffice.LibreOffice
  apt_package_name: libreoffice
  snap_package_name: libreoffice
- display_name: Grsync
  apt_package_name: grsync
  apt_only: true
`
)

// CatalogEntry identifies one application to migrate across package sources.
type CatalogEntry struct {
	DisplayName          string `mapstructure:"display_name" yaml:"display_name"`
	FlatpakApplicationID string `mapstructure:"flatpak_application_id" yaml:"flatpak_application_id"`
	AptPackageName       string `mapstructure:"apt_package_name" yaml:"apt_package_name"`
	SnapPackageName      string `mapstructure:"snap_package_name" yaml:"snap_package_name"`
	AptOnly              bool   `mapstructure:"apt_only" yaml:"apt_only"`
}

// DefaultCatalog returns the built-in application catalog.
func DefaultCatalog() ([]CatalogEntry, error) {
	var catalogEntries []CatalogEntry
	if unmarshalError := yaml.Unmarshal([]byte(defaultCatalogDocumentConstant), &catalogEntries); unmarshalError != nil {
		return nil, fmt.Errorf(defaultCatalogParseErrorTemplateConstant, unmarshalError)
	}
	return catalogEntries, nil
}
