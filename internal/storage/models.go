package storage

import "time"

// SenderUser is the sender marker for messages authored by the human user.
// Any other sender value is a bot name.
const SenderUser = "user"

// Bot is a named persona configuration that can generate chat replies.
type Bot struct {
	ID           int64
	Name         string // Unique, stable key
	Role         string // Short description used in routing prompts
	SystemPrompt string // Persona instructions
	Model        string // Identifier of the backing language model
}

// Conversation owns an ordered collection of messages.
type Conversation struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Message is a single chat turn within a conversation.
// Sender is a denormalized string, not a foreign key, so history
// survives bot renames.
type Message struct {
	ID             int64
	ConversationID int64
	Sender         string
	Content        string
	Timestamp      time.Time
}
