// Package migrate orchestrates moving catalog applications from APT and Snap
// installations to their Flatpak equivalents.
package migrate
