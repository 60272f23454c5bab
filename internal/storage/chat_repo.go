package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_store.go -package=mocks secrecy-ai/internal/storage ChatStore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"secrecy-ai/internal/chat"
	"secrecy-ai/internal/events"
)

// ChatStore defines the interface for chat persistence.
type ChatStore interface {
	// GetAll returns every chat of one user, including messages, in
	// creation order. Corrupt rows are skipped, never surfaced as errors.
	GetAll(ctx context.Context, userID string) ([]chat.Chat, error)
	// GetByID returns one chat with its messages.
	// Returns ErrNotFound if no such chat exists.
	GetByID(ctx context.Context, id string) (*chat.Chat, error)
	// Save upserts a chat and its full message history.
	Save(ctx context.Context, c *chat.Chat) error
	// Delete removes a chat and its messages. Notes pinned from the chat
	// are left untouched. Deleting a missing chat returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// ChatRepo provides methods for chat operations backed by SQLite.
// It implements the ChatStore interface and publishes on the chats topic
// after every successful write.
type ChatRepo struct {
	db     *sql.DB
	bus    *events.Bus
	logger *slog.Logger
}

// NewChatRepo creates a new ChatRepo.
func NewChatRepo(db *sql.DB, bus *events.Bus) *ChatRepo {
	return &ChatRepo{db: db, bus: bus, logger: slog.Default()}
}

// GetAll returns every chat of one user in creation order.
func (r *ChatRepo) GetAll(ctx context.Context, userID string) ([]chat.Chat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, is_pinned, created_at, last_message_at
		 FROM chats WHERE user_id = ? ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	chats := make([]chat.Chat, 0)
	for rows.Next() {
		c, err := r.scanChat(rows)
		if err != nil {
			continue // already logged
		}
		chats = append(chats, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chats: %w", err)
	}

	for i := range chats {
		msgs, err := r.messagesFor(ctx, chats[i].ID)
		if err != nil {
			return nil, err
		}
		chats[i].Messages = msgs
	}

	return chats, nil
}

// GetByID returns one chat with its messages, or ErrNotFound.
func (r *ChatRepo) GetByID(ctx context.Context, id string) (*chat.Chat, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, is_pinned, created_at, last_message_at
		 FROM chats WHERE id = ?`,
		id,
	)

	c, err := r.scanChat(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chat: %w", err)
	}

	msgs, err := r.messagesFor(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Messages = msgs
	return c, nil
}

// Save upserts the chat row and replaces its message history in one
// transaction, then notifies chat listeners.
func (r *ChatRepo) Save(ctx context.Context, c *chat.Chat) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO chats (id, user_id, title, is_pinned, created_at, last_message_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		 title = excluded.title, is_pinned = excluded.is_pinned,
		 last_message_at = excluded.last_message_at`,
		c.ID, c.UserID, c.Title, boolToInt(c.IsPinned), formatTime(c.CreatedAt), formatTime(c.LastMessageAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert chat: %w", err)
	}

	// Messages are append-only in the aggregate; replacing the stored set
	// keeps Save a plain upsert of the whole entity.
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE chat_id = ?`, c.ID); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	for i, m := range c.Messages {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (id, chat_id, seq, sender, text, timestamp)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, c.ID, i, string(m.Sender), m.Text, formatTime(m.Timestamp),
		)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat: %w", err)
	}

	r.bus.Publish(events.TopicChats)
	return nil
}

// Delete removes the chat and its messages, then notifies chat listeners.
func (r *ChatRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	r.bus.Publish(events.TopicChats)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ChatRepo) scanChat(row rowScanner) (*chat.Chat, error) {
	var c chat.Chat
	var pinned int
	var createdAt, lastMessageAt string

	if err := row.Scan(&c.ID, &c.UserID, &c.Title, &pinned, &createdAt, &lastMessageAt); err != nil {
		return nil, err
	}
	c.IsPinned = pinned != 0

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		logCorruptRow(r.logger, "chats", c.ID, err)
		return nil, err
	}
	if c.LastMessageAt, err = parseTime(lastMessageAt); err != nil {
		logCorruptRow(r.logger, "chats", c.ID, err)
		return nil, err
	}
	return &c, nil
}

func (r *ChatRepo) messagesFor(ctx context.Context, chatID string) ([]chat.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sender, text, timestamp FROM messages WHERE chat_id = ? ORDER BY seq`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	msgs := make([]chat.Message, 0)
	for rows.Next() {
		var m chat.Message
		var sender, ts string
		if err := rows.Scan(&m.ID, &sender, &m.Text, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Sender = chat.Sender(sender)
		if m.Timestamp, err = parseTime(ts); err != nil {
			logCorruptRow(r.logger, "messages", m.ID, err)
			continue
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return msgs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
