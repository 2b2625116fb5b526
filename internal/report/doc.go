// Package report aggregates per-application migration outcomes and renders the
// categorized end-of-run summary.
package report
