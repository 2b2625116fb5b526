// Package preflight checks privileges and terminal availability before a migration run.
package preflight
