// Package cli assembles the flatmove command-line application: root command,
// configuration loading, and logger wiring.
package cli
