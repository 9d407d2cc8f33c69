package mcp

import (
	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ask answers questions from the guideline with citations.
	Ask driving.AskService

	// Retrieval exposes raw similarity search for diagnostics.
	Retrieval driving.RetrievalService

	// Ingest reports index build status for the document resource.
	Ingest driving.IngestService

	// Document identifies the guideline served by this process.
	Document domain.DocumentSettings
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	// Retrieval and Ingest are optional; the related tool and resource
	// degrade gracefully when absent.
	return nil
}
