// Package ui formats command lifecycle events for human-readable console output.
package ui
