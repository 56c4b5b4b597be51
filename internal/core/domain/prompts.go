package domain

// DefaultAnswerSystemPrompt instructs the generator to stay within the
// supplied chunks and cite them.
const DefaultAnswerSystemPrompt = `Answer using only the provided context.
The context is split into chunks, each introduced by a header such as [Chunk 3 | score 0.812].
Cite the chunks you rely on by index, for example (chunk 3).
If the context does not contain the answer, say that you don't know.`

// Placeholders filled into the answer user prompt. Any other text in a
// template, including a literal %, is passed through unchanged.
const (
	PromptContextPlaceholder  = "{{context}}"
	PromptQuestionPlaceholder = "{{question}}"
)

// DefaultAnswerUserPrompt wraps the assembled context and the question.
const DefaultAnswerUserPrompt = `Context:
{{context}}

Question: {{question}}`
