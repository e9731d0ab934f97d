// Package services implements the driving port interfaces.
// Services contain the core logic (idempotent ingestion, retrieval,
// context formatting and the tool-calling loop) and orchestrate calls to
// driven ports.
package services
