// Package core contains the pure data types shared across the playground:
// dialect configuration, compiled queries, and formatting options.
//
// This package has no dependencies beyond the standard library. Runtime
// behavior (quoting, literal rendering, placeholder formatting) lives in
// pkg/dialect, which builds on these types.
package core
