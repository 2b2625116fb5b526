// Package flatpakcli wraps the flatpak command behind a typed client.
package flatpakcli
