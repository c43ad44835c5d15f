// Package driving declares what the outer surfaces (cli, api, mcp, tui) may
// ask of the core: ingest files, answer or search a query, browse the
// catalogue and edit settings.
//
// internal/core/services provides the implementations.
package driving
