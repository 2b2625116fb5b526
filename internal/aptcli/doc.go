// Package aptcli wraps APT tooling (apt-get, dpkg-query) behind a typed client.
package aptcli
