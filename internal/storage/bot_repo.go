package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_bot_store.go -package=mocks multichat/internal/storage BotStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("record already exists")
)

// BotStore defines the interface for bot storage operations.
type BotStore interface {
	// Create inserts a new bot. Returns ErrDuplicate if the name is taken.
	Create(ctx context.Context, bot *Bot) error
	// GetByID gets a bot by id. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (*Bot, error)
	// GetByName gets a bot by its unique name. Returns ErrNotFound if absent.
	GetByName(ctx context.Context, name string) (*Bot, error)
	// ListAll returns all bots in creation order.
	ListAll(ctx context.Context) ([]Bot, error)
	// UpdateModel changes a bot's backing model. Returns ErrNotFound if absent.
	UpdateModel(ctx context.Context, id int64, model string) error
	// Count returns the number of configured bots.
	Count(ctx context.Context) (int, error)
}

// BotRepo provides methods for bot operations.
// It implements the BotStore interface.
type BotRepo struct {
	db *sql.DB
}

// NewBotRepo creates a new BotRepo.
func NewBotRepo(db *sql.DB) *BotRepo {
	return &BotRepo{db: db}
}

// Create inserts a new bot and fills in its generated id.
// Returns ErrDuplicate if a bot with the same name already exists.
func (r *BotRepo) Create(ctx context.Context, bot *Bot) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO bots (name, role, system_prompt, model) VALUES (?, ?, ?, ?)",
		bot.Name, bot.Role, bot.SystemPrompt, bot.Model,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert bot: %w", err)
	}

	bot.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get bot id: %w", err)
	}
	return nil
}

// GetByID gets a bot by id. Returns ErrNotFound if absent.
func (r *BotRepo) GetByID(ctx context.Context, id int64) (*Bot, error) {
	return r.get(ctx, "SELECT id, name, role, system_prompt, model FROM bots WHERE id = ?", id)
}

// GetByName gets a bot by its unique name. Returns ErrNotFound if absent.
func (r *BotRepo) GetByName(ctx context.Context, name string) (*Bot, error) {
	return r.get(ctx, "SELECT id, name, role, system_prompt, model FROM bots WHERE name = ?", name)
}

func (r *BotRepo) get(ctx context.Context, query string, arg any) (*Bot, error) {
	var bot Bot
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&bot.ID, &bot.Name, &bot.Role, &bot.SystemPrompt, &bot.Model)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query bot: %w", err)
	}
	return &bot, nil
}

// ListAll returns all bots in creation order.
func (r *BotRepo) ListAll(ctx context.Context) ([]Bot, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, role, system_prompt, model FROM bots ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list bots: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var bots []Bot
	for rows.Next() {
		var bot Bot
		if err := rows.Scan(&bot.ID, &bot.Name, &bot.Role, &bot.SystemPrompt, &bot.Model); err != nil {
			return nil, fmt.Errorf("failed to scan bot: %w", err)
		}
		bots = append(bots, bot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bots: %w", err)
	}
	return bots, nil
}

// UpdateModel changes a bot's backing model. Returns ErrNotFound if absent.
func (r *BotRepo) UpdateModel(ctx context.Context, id int64, model string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE bots SET model = ? WHERE id = ?", model, id)
	if err != nil {
		return fmt.Errorf("failed to update bot model: %w", err)
	}
	// RowsAffected is 0 for a missing row but also for a no-op update to the
	// same value, so check existence explicitly when nothing changed.
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// isForeignKeyViolation reports whether err is a SQLite foreign key
// constraint failure.
func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// Count returns the number of configured bots.
func (r *BotRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bots").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bots: %w", err)
	}
	return n, nil
}
