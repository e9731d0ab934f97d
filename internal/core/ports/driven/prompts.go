package driven

// Prompt names understood by PromptStore.
const (
	// PromptAgentSystem seeds every agent conversation.
	PromptAgentSystem = "agent_system"
)

// PromptStore loads user-editable prompt templates by name.
type PromptStore interface {
	// Load returns the prompt text for name.
	Load(name string) (string, error)

	// Dir returns the directory prompts are read from.
	Dir() string
}
