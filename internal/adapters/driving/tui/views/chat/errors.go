package chat

import "errors"

// Error definitions for the chat view.
var (
	// ErrNoAgent indicates that no agent was provided.
	ErrNoAgent = errors.New("agent is required")

	// ErrNoIngestService indicates that /load was used without an ingest service.
	ErrNoIngestService = errors.New("ingest service is required")

	// ErrUnknownCommand is returned for an unrecognised slash command.
	ErrUnknownCommand = errors.New("unknown command")
)
