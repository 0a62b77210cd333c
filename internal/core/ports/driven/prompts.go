package driven

// PromptStore provides LLM prompt templates by name.
type PromptStore interface {
	// Load returns the template for name. Known names always resolve, falling
	// back to built-in defaults; unknown names are an error.
	Load(name string) (string, error)
}

// Well-known prompt names used by the assistant.
const (
	// PromptAskSystem is the system prompt for grounded questions.
	// This prompt has no format placeholders.
	PromptAskSystem = "ask_system"

	// PromptAskContext wraps a group's text and the user's question.
	// The template expects %s (title), %s (content) and %s (question).
	PromptAskContext = "ask_context"

	// PromptSummarise summarises a group.
	// The template expects %d (max length) and %s (content) placeholders.
	PromptSummarise = "summarise"
)
