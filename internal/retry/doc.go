// Package retry provides a fixed-delay bounded retry policy for flaky external operations.
package retry
