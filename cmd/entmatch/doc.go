// Package main hosts the entmatch CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into calls on
// the match pipeline: a liveness check against the remote matcher, one-shot
// and interactive single-name searches, batch uploads with summaries and CSV
// export, and configuration scaffolding. It centralizes configuration
// resolution and structured logging setup so subcommands can focus on
// rendering.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it through dedicated commands or flags here.
package main
