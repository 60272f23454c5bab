package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_store.go -package=mocks secrecy-ai/internal/storage NoteStore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"secrecy-ai/internal/chat"
	"secrecy-ai/internal/events"
)

// NoteStore defines the interface for note persistence.
type NoteStore interface {
	// GetAll returns every note of one user in creation order.
	GetAll(ctx context.Context, userID string) ([]chat.Note, error)
	// GetByID returns one note, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*chat.Note, error)
	// Save upserts a note by id.
	Save(ctx context.Context, n *chat.Note) error
	// Delete removes a note. Returns ErrNotFound for a missing note.
	Delete(ctx context.Context, id string) error
}

// NoteRepo provides methods for note operations backed by SQLite.
// It implements the NoteStore interface and publishes on the notes topic
// after every successful write.
type NoteRepo struct {
	db     *sql.DB
	bus    *events.Bus
	logger *slog.Logger
}

// NewNoteRepo creates a new NoteRepo.
func NewNoteRepo(db *sql.DB, bus *events.Bus) *NoteRepo {
	return &NoteRepo{db: db, bus: bus, logger: slog.Default()}
}

// GetAll returns every note of one user in creation order.
func (r *NoteRepo) GetAll(ctx context.Context, userID string) ([]chat.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, content, source_message_id, source_chat_id, created_at, updated_at
		 FROM notes WHERE user_id = ? ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	notes := make([]chat.Note, 0)
	for rows.Next() {
		n, err := r.scanNote(rows)
		if err != nil {
			continue // corrupt row, already logged
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return notes, nil
}

// GetByID returns one note, or ErrNotFound.
func (r *NoteRepo) GetByID(ctx context.Context, id string) (*chat.Note, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, content, source_message_id, source_chat_id, created_at, updated_at
		 FROM notes WHERE id = ?`,
		id,
	)

	n, err := r.scanNote(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query note: %w", err)
	}
	return n, nil
}

// Save upserts the note by id and notifies note listeners.
func (r *NoteRepo) Save(ctx context.Context, n *chat.Note) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (id, user_id, title, content, source_message_id, source_chat_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		 title = excluded.title, content = excluded.content, updated_at = excluded.updated_at`,
		n.ID, n.UserID, n.Title, n.Content, n.SourceMessageID, n.SourceChatID,
		formatTime(n.CreatedAt), formatTime(n.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert note: %w", err)
	}

	r.bus.Publish(events.TopicNotes)
	return nil
}

// Delete removes the note and notifies note listeners.
func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	r.bus.Publish(events.TopicNotes)
	return nil
}

func (r *NoteRepo) scanNote(row rowScanner) (*chat.Note, error) {
	var n chat.Note
	var createdAt, updatedAt string

	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content,
		&n.SourceMessageID, &n.SourceChatID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		logCorruptRow(r.logger, "notes", n.ID, err)
		return nil, err
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		logCorruptRow(r.logger, "notes", n.ID, err)
		return nil, err
	}
	return &n, nil
}
