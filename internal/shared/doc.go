// Package shared holds helpers used by more than one internal package.
//
// The testutil subpackage captures slog output so tests can assert on what
// the pipeline logged, including the run_id carried by the context.
package shared
