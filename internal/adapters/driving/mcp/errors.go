// Package mcp provides an MCP (Model Context Protocol) server adapter for docqa.
// It lets AI assistants ask questions about uploaded documents and browse
// documents and answer history.
package mcp

import "errors"

var (
	// ErrMissingAskService is returned when the ask service is not provided.
	ErrMissingAskService = errors.New("mcp: ask service is required")

	// ErrMissingAuthProvider is returned when no auth provider is configured.
	ErrMissingAuthProvider = errors.New("mcp: auth provider is required")
)
