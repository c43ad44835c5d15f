package driven

// Prompt names known to every PromptStore.
const (
	// PromptAnswerSystem is the system message for answering. It takes no
	// format arguments.
	PromptAnswerSystem = "answer_system"

	// PromptAnswer is the user message for answering, formatted with the
	// question and then the context.
	PromptAnswer = "answer"
)

// PromptStore supplies prompt templates by name.
type PromptStore interface {
	// Load returns the template for name. Unknown names are an error.
	Load(name string) (string, error)

	// Reload forgets cached templates.
	Reload()
}

// PromptStoreAware is implemented by LLM adapters whose prompts can be
// replaced. Without a store they use their built-in prompts.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
