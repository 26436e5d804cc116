// Package errors provides standardized error handling patterns for the
// toolkit. It includes error classification, standard error variables, and
// helper functions for consistent error wrapping across packages.
//
// Recoverable, expected conditions (validation failures, not-found results,
// dropped telemetry) are represented as values elsewhere in the toolkit and
// never pass through this package. The errors here cover infrastructure
// faults: connectivity, configuration, and lifecycle misuse.
package errors
