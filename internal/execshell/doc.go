// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines abstractions used throughout flatmove
// to run apt-get, dpkg-query, snap, flatpak, and related CLIs in a testable
// manner.
package execshell
