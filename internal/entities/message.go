package entities

// Message is a single inbound chat event, normalized from the transport update.
type Message struct {
	ChatID   int64
	UserID   int64
	Username string
	ChatType string // "private", "group", "supergroup"
	Text     string
}
