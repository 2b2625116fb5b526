// Package snapcli wraps the snap command behind a typed client.
package snapcli
