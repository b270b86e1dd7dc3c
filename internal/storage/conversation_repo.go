package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_conversation_store.go -package=mocks multichat/internal/storage ConversationStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ConversationStore defines the interface for conversation storage operations.
type ConversationStore interface {
	// Create inserts a new conversation with the given name.
	Create(ctx context.Context, name string) (*Conversation, error)
	// GetByID gets a conversation by id. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (*Conversation, error)
	// ListAll returns all conversations, newest first.
	ListAll(ctx context.Context) ([]Conversation, error)
	// Delete removes a conversation and all of its messages.
	// Returns ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error
}

// ConversationRepo provides methods for conversation operations.
// It implements the ConversationStore interface.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo creates a new ConversationRepo.
func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Create inserts a new conversation with the given name.
func (r *ConversationRepo) Create(ctx context.Context, name string) (*Conversation, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO conversations (name) VALUES (?)", name)
	if err != nil {
		return nil, fmt.Errorf("failed to insert conversation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation id: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID gets a conversation by id. Returns ErrNotFound if absent.
func (r *ConversationRepo) GetByID(ctx context.Context, id int64) (*Conversation, error) {
	var conv Conversation
	var createdAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM conversations WHERE id = ?", id,
	).Scan(&conv.ID, &conv.Name, &createdAtStr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	conv.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	return &conv, nil
}

// ListAll returns all conversations, newest first.
func (r *ConversationRepo) ListAll(ctx context.Context) ([]Conversation, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM conversations ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var convs []Conversation
	for rows.Next() {
		var conv Conversation
		var createdAtStr string
		if err := rows.Scan(&conv.ID, &conv.Name, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conv.CreatedAt, err = parseTimestamp(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}
	return convs, nil
}

// Delete removes a conversation and all of its messages.
// Messages are deleted first so the foreign key constraint holds.
func (r *ConversationRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}
