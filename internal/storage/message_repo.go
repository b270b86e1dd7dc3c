package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_message_store.go -package=mocks multichat/internal/storage MessageStore

import (
	"context"
	"database/sql"
	"fmt"
)

// MessageStore defines the interface for message storage operations.
// Messages are append-only; they are removed only when their owning
// conversation is deleted.
type MessageStore interface {
	// Create appends a message to its conversation.
	Create(ctx context.Context, msg *Message) error
	// ListByConversation returns a conversation's messages ordered by
	// timestamp, ties broken by id.
	ListByConversation(ctx context.Context, conversationID int64) ([]Message, error)
}

// MessageRepo provides methods for message operations.
// It implements the MessageStore interface.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo creates a new MessageRepo.
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create appends a message and fills in its generated id and timestamp.
// Returns ErrNotFound if the conversation does not exist.
func (r *MessageRepo) Create(ctx context.Context, msg *Message) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (conversation_id, sender, content) VALUES (?, ?, ?)",
		msg.ConversationID, msg.Sender, msg.Content,
	)
	if err != nil {
		// The conversation FK is the only constraint on this insert
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to insert message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get message id: %w", err)
	}
	msg.ID = id

	var tsStr string
	if err := r.db.QueryRowContext(ctx,
		"SELECT timestamp FROM messages WHERE id = ?", id).Scan(&tsStr); err != nil {
		return fmt.Errorf("failed to read message timestamp: %w", err)
	}
	msg.Timestamp, err = parseTimestamp(tsStr)
	if err != nil {
		return fmt.Errorf("failed to parse message timestamp: %w", err)
	}
	return nil
}

// ListByConversation returns a conversation's messages ordered by
// timestamp, ties broken by id.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID int64) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, sender, content, timestamp FROM messages
		 WHERE conversation_id = ? ORDER BY timestamp, id`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var msgs []Message
	for rows.Next() {
		var msg Message
		var tsStr string
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Sender, &msg.Content, &tsStr); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Timestamp, err = parseTimestamp(tsStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse message timestamp: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return msgs, nil
}
