package constant

// Audit action codes. Append new codes; never rename existing ones, the
// audit trail depends on them being stable.
const (
	ActionDocumentUpload    = "document_upload"
	ActionDocumentDelete    = "document_delete"
	ActionDocumentList      = "document_list"
	ActionChatMessage       = "chat_message"
	ActionSessionDelete     = "session_delete"
	ActionFeedbackSubmitted = "feedback_submitted"
)

const (
	ResourceDocument = "document"
	ResourceSession  = "chat_session"
	ResourceMessage  = "chat_message"
	ResourceFeedback = "feedback"
)
