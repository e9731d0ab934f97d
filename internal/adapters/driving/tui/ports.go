// Package tui provides an interactive terminal chat for sitechat.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driving"
)

// Ports aggregates the driving ports and session settings the TUI needs.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Agent answers questions.
	Agent driving.Agent

	// Ingest loads pages into collections. Optional; /load is disabled without it.
	Ingest driving.IngestService

	// Retrieval lists collections. Optional.
	Retrieval driving.RetrievalService

	// Collection is the collection the session reads and writes.
	Collection string

	// Locator is loaded into Collection when the TUI starts. Optional.
	Locator string

	// SystemPrompt seeds each conversation.
	SystemPrompt string

	// Model is the chat model name shown in the status bar.
	Model string
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	agent driving.Agent,
	ingest driving.IngestService,
	retrieval driving.RetrievalService,
) *Ports {
	return &Ports{
		Agent:      agent,
		Ingest:     ingest,
		Retrieval:  retrieval,
		Collection: domain.DefaultCollection,
	}
}

// Validate ensures the required ports are set and fills defaults.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Agent == nil {
		return ErrMissingAgent
	}
	if p.Collection == "" {
		p.Collection = domain.DefaultCollection
	}
	return nil
}
