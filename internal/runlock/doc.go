// Package runlock guards against concurrent migration runs via a lock marker file.
package runlock
