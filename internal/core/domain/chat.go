package domain

// Chat roles, matching the completion provider wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one prior exchange in a conversation.
type ChatTurn struct {
	// Role is who spoke: RoleUser or RoleAssistant.
	Role string `json:"role"`

	// Content is what was said.
	Content string `json:"content"`
}

// Answer is a completed retrieval-grounded response.
type Answer struct {
	// Text is the assistant's reply.
	Text string `json:"text"`

	// Context holds the chunks the reply was grounded on, ranked.
	Context []RetrievedChunk `json:"-"`

	// NeedsIngest is true when the knowledge base was empty and the
	// reply is guidance to run ingestion rather than a model answer.
	NeedsIngest bool `json:"needsIngest,omitempty"`
}
