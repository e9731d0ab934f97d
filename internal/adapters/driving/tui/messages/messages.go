// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the conversation view.
	ViewChat ViewType = iota
	// ViewCollections lists stored collections.
	ViewCollections
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewCollections:
		return "collections"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// AnswerDelta carries a streamed fragment of the assistant's answer.
type AnswerDelta struct {
	Text string
}

// AnswerCompleted signals the agent finished a question.
type AnswerCompleted struct {
	Answer string
	Err    error
}

// IngestRequested asks the chat view to load a source.
type IngestRequested struct {
	Locator string
}

// IngestCompleted carries the outcome of loading a source.
type IngestCompleted struct {
	Locator    string
	Collection string
	Outcome    domain.IngestOutcome
	Err        error
}

// CollectionsLoaded carries the stored collections.
type CollectionsLoaded struct {
	Collections []domain.CollectionInfo
	Err         error
}

// CollectionDropped signals a collection was deleted.
type CollectionDropped struct {
	Name string
	Err  error
}
