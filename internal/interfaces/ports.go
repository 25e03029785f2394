package interfaces

// Messenger is the outbound chat transport.
type Messenger interface {
	SendMessage(chatID int64, text string) error
	// SendMarkdown sends rich-formatted text; implementations must fall back
	// to plain text when formatting is rejected by the transport.
	SendMarkdown(chatID int64, text string) error
	SendPoll(chatID int64, question string, options []string) error
}

// AIClient generates conversational replies for the free-text fallback path.
type AIClient interface {
	GenerateResponse(prompt string) (string, error)
}
