package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// ChatHistoryWindow is how many trailing messages are embedded and sent on.
	ChatHistoryWindow = 6
	// ChatRetrievalTopK is how many braincells are pulled into the prompt.
	ChatRetrievalTopK = 10

	ChatContextHeader = "The relevant data for this query are:\n"

	DefaultChatPersona = "You are an intelligent virtual assistant for a personal knowledge base. " +
		"You answer the user's question based on the braincells they have written. " +
		"Please format the response to be easily readable, with a maximum of 2 messages, " +
		"and keep the answers short and concise "

	BraincellDeletedMessage = "Braincell data deleted"
)
