package mcp

import (
	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driving"
)

// Ports aggregates the driving ports and defaults used by the MCP server.
type Ports struct {
	// Retrieval answers retrieve_context calls and lists collections.
	Retrieval driving.RetrievalService

	// Ingest loads sources. The ingest tool is only offered when set.
	Ingest driving.IngestService

	// Collection is used when a call names none.
	Collection string

	// K is the default number of passages per retrieve_context call.
	K int
}

// Validate ensures all required ports are set and fills in defaults.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Collection == "" {
		p.Collection = domain.DefaultCollection
	}
	if p.K < 1 {
		p.K = 3
	}
	return nil
}
