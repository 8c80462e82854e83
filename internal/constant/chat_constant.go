package constant

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// NoContextAnswer is returned verbatim when retrieval finds nothing.
// No model call is made in that case.
const NoContextAnswer = "I could not find any relevant content in your documents to answer that question."

const RagSystemPrompt = `You are a document assistant. Answer the question using ONLY the context below.
If the context does not contain the answer, say you don't know. Do not invent information.

Context:
%s`

const SessionTitleMaxRunes = 50
