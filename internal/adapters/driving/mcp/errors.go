// Package mcp provides an MCP (Model Context Protocol) server adapter for docqa.
// It lets AI assistants ask questions over the locally indexed PDFs.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

// ErrIngestDisabled is returned by ingest_files when no ingest service is wired.
var ErrIngestDisabled = errors.New("mcp: ingestion is not available")
