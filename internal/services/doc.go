// Package services holds the cross-cutting plumbing shared by the match
// pipeline packages.
//
// It defines the context keys used to carry session IDs, request correlation
// IDs, and query generations through blocking calls, plus the sentinel error
// markers (ErrValidation, ErrTransport, ErrConfiguration) that let the CLI
// classify failures without knowing each package's concrete error types.
package services
