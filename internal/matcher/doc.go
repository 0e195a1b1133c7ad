// Package matcher is the HTTP client for the remote fuzzy entity matching
// service.
//
// It exposes the three remote operations (Health, MatchSingle, MatchBatch)
// and normalizes every failure, whether network error, timeout, non-2xx
// status, or undecodable body, into a *TransportError carrying a
// human-readable message and, when a response arrived, its HTTP status.
// Nothing is retried. Requests carry an X-Request-ID header and may be paced
// client-side with a token bucket. The default transport is wrapped with
// otelhttp so spans flow to whatever tracer provider the process installs.
package matcher
