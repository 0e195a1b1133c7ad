// Package textutil provides text cleanup helpers for entity names and
// filenames.
//
// CleanName is applied to every name the ingestor extracts: it composes the
// text to NFC, drops control and format characters (including stray byte order
// marks), collapses internal whitespace runs, and trims the result.
// SanitizeFileName keeps user-supplied export names filesystem safe.
package textutil
