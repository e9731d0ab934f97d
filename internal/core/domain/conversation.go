package domain

// Role identifies the author of a chat message.
type Role string

// Message roles understood by chat models.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model's request to invoke a registered tool.
type ToolCall struct {
	// ID correlates the call with its tool result message.
	ID string

	// Name is the tool name.
	Name string

	// Arguments is the raw JSON argument object.
	Arguments string
}

// Message is a single entry in a conversation.
type Message struct {
	Role Role

	// Content is the message text. May be empty for assistant tool-call turns.
	Content string

	// ToolCalls is set on assistant messages that request tool invocations.
	ToolCalls []ToolCall

	// ToolCallID is set on tool messages to link them to a ToolCall.
	ToolCallID string
}

// ToolSpec describes a tool to the chat model.
type ToolSpec struct {
	Name        string
	Description string

	// Parameters is a JSON schema object for the tool arguments.
	Parameters map[string]any
}

// Conversation is caller-owned chat state. It is passed by pointer into the
// agent, which appends to it; nothing about it is global.
type Conversation struct {
	messages []Message
}

// NewConversation creates a conversation, optionally seeded with a system prompt.
func NewConversation(systemPrompt string) *Conversation {
	c := &Conversation{}
	if systemPrompt != "" {
		c.messages = append(c.messages, Message{Role: RoleSystem, Content: systemPrompt})
	}
	return c
}

// Append adds messages to the end of the conversation.
func (c *Conversation) Append(msgs ...Message) {
	c.messages = append(c.messages, msgs...)
}

// Messages returns a copy of the conversation history.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Truncate drops every message after the first n.
func (c *Conversation) Truncate(n int) {
	if n >= 0 && n < len(c.messages) {
		c.messages = c.messages[:n]
	}
}

// Reset drops everything except a leading system prompt.
func (c *Conversation) Reset() {
	if len(c.messages) > 0 && c.messages[0].Role == RoleSystem {
		c.messages = c.messages[:1]
		return
	}
	c.messages = nil
}

// LastAssistant returns the most recent assistant message with text content.
func (c *Conversation) LastAssistant() (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant && c.messages[i].Content != "" {
			return c.messages[i], true
		}
	}
	return Message{}, false
}
