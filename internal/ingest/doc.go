// Package ingest turns an uploaded name file into the ordered list of entity
// names a batch match request carries.
//
// Admission checks (declared content type, declared size) run before a single
// byte is parsed, and reads are capped at the configured limit so a lying size
// cannot slip a larger file through. Tabular files are read with a header row
// and the "names" column (falling back to "name"). Structured files are a
// top-level array whose elements are strings or records with a "names" or
// "name" field; JSON and YAML share the same element rules. Every extracted
// value goes through textutil.CleanName, blank values are dropped silently,
// and source order is preserved.
//
// All failures are *ValidationError values, which match services.ErrValidation.
package ingest
