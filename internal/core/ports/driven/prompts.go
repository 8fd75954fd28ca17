package driven

// PromptStore provides access to prompt templates. Implementations may
// load prompts from files or embed defaults in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name. Returns
	// domain.ErrNotFound when no override exists; callers fall back to
	// their built-in default.
	Load(name string) (string, error)
}

// Well-known prompt names.
const (
	// PromptChatSystem is the system prompt for grounded chat answers.
	// It has no format placeholders; the context block is appended as
	// its own message section.
	PromptChatSystem = "chat_system"
)
