package mcp

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates the services the MCP server exposes.
type Ports struct {
	// Ask answers questions.
	Ask driving.AskService

	// Ingest accepts raw text uploads. Optional; the ingest tool is omitted without it.
	Ingest driving.IngestService

	// Document lists and fetches documents. Optional.
	Document driving.DocumentService

	// History lists answered questions. Optional.
	History driving.HistoryService

	// Auth turns a caller token into an owner ID.
	Auth driven.AuthProvider
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	if p.Auth == nil {
		return ErrMissingAuthProvider
	}
	return nil
}
