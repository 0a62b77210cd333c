// Package mcp provides an MCP (Model Context Protocol) server adapter for the library.
// It lets AI assistants page through, inspect and delete grouped content.
package mcp

import "errors"

// ErrMissingLibraryService is returned when the library service is not provided.
var ErrMissingLibraryService = errors.New("mcp: library service is required")

// ErrAssistantUnavailable is returned by library_ask when no model is configured.
var ErrAssistantUnavailable = errors.New("mcp: no assistant configured")
