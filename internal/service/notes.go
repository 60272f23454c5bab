package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"secrecy-ai/internal/chat"
	"secrecy-ai/internal/contextutil"
	"secrecy-ai/internal/storage"
	"secrecy-ai/internal/vectorstore"
)

// Embedder turns text into a vector for semantic note search.
type Embedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// NoteService provides note management and search.
type NoteService interface {
	ListNotes(ctx context.Context, userID string) ([]chat.Note, error)
	GetNote(ctx context.Context, userID, noteID string) (*chat.Note, error)
	CreateNote(ctx context.Context, userID, title, content string) (*chat.Note, error)
	CreateNoteFromMessage(ctx context.Context, userID, chatID, messageID, customTitle string) (*chat.Note, error)
	UpdateNote(ctx context.Context, userID, noteID, title, content string) (*chat.Note, error)
	DeleteNote(ctx context.Context, userID, noteID string) error
	SearchNotes(ctx context.Context, userID, query string, k int) ([]chat.Note, error)
}

// noteService implements NoteService. The vector index is an acceleration
// layer over sqlite, never the source of truth: indexing failures are logged
// and the note survives, and search falls back to a substring scan when no
// index is configured.
type noteService struct {
	notes      storage.NoteStore
	chats      storage.ChatStore
	embedder   Embedder
	vectors    vectorstore.VectorStore
	collection string
}

// NewNoteService creates a new NoteService. embedder and vectors may be nil,
// which disables semantic search.
func NewNoteService(notes storage.NoteStore, chats storage.ChatStore, embedder Embedder, vectors vectorstore.VectorStore, collection string) NoteService {
	return &noteService{
		notes:      notes,
		chats:      chats,
		embedder:   embedder,
		vectors:    vectors,
		collection: collection,
	}
}

// ListNotes returns all notes belonging to the user.
func (s *noteService) ListNotes(ctx context.Context, userID string) ([]chat.Note, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.notes.GetAll(ctx, userID)
}

// GetNote returns one note owned by the user.
func (s *noteService) GetNote(ctx context.Context, userID, noteID string) (*chat.Note, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.ownedNote(ctx, userID, noteID)
}

// CreateNote creates a free-standing note.
func (s *noteService) CreateNote(ctx context.Context, userID, title, content string) (*chat.Note, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if content == "" {
		return nil, &ValidationError{Field: "content", Message: "cannot be empty"}
	}

	n := chat.NewNote(userID, title, content)
	if err := s.notes.Save(ctx, n); err != nil {
		return nil, WrapError(err, "failed to save note")
	}
	s.index(ctx, n)
	return n, nil
}

// CreateNoteFromMessage pins a chat message as a note. The note holds a copy
// of the message text, so the source chat can be cleared or deleted later
// without touching the note.
func (s *noteService) CreateNoteFromMessage(ctx context.Context, userID, chatID, messageID, customTitle string) (*chat.Note, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	c, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	var msg *chat.Message
	for i := range c.Messages {
		if c.Messages[i].ID == messageID {
			msg = &c.Messages[i]
			break
		}
	}
	if msg == nil {
		return nil, ErrNotFound
	}

	n := chat.NewNoteFromMessage(userID, *msg, chatID, strings.TrimSpace(customTitle))
	if err := s.notes.Save(ctx, n); err != nil {
		return nil, WrapError(err, "failed to save note")
	}
	s.index(ctx, n)
	return n, nil
}

// UpdateNote replaces the note's title and content.
func (s *noteService) UpdateNote(ctx context.Context, userID, noteID, title, content string) (*chat.Note, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "cannot be empty"}
	}

	n, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	n.Title = title
	n.Content = content
	n.UpdatedAt = time.Now().UTC()
	if err := s.notes.Save(ctx, n); err != nil {
		return nil, WrapError(err, "failed to save note")
	}
	s.index(ctx, n)
	return n, nil
}

// DeleteNote removes the note and its index entry.
func (s *noteService) DeleteNote(ctx context.Context, userID, noteID string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	if _, err := s.ownedNote(ctx, userID, noteID); err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, noteID); err != nil {
		return WrapError(err, "failed to delete note")
	}

	if s.vectors != nil {
		logger := contextutil.LoggerFromContext(ctx)
		if err := s.vectors.Delete(ctx, s.collection, []string{noteID}); err != nil {
			logger.WarnContext(ctx, "failed to remove note from index", "note_id", noteID, "error", err)
		}
	}
	return nil
}

// SearchNotes finds the user's notes matching the query, using the vector
// index when available and a substring scan otherwise.
func (s *noteService) SearchNotes(ctx context.Context, userID, query string, k int) ([]chat.Note, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ValidationError{Field: "query", Message: "cannot be empty"}
	}
	if k <= 0 {
		k = 10
	}

	if s.embedder != nil && s.vectors != nil {
		notes, err := s.semanticSearch(ctx, userID, query, k)
		if err == nil {
			return notes, nil
		}
		logger := contextutil.LoggerFromContext(ctx)
		logger.WarnContext(ctx, "semantic search failed, falling back to scan", "error", err)
	}

	return s.scanSearch(ctx, userID, query, k)
}

func (s *noteService) semanticSearch(ctx context.Context, userID, query string, k int) ([]chat.Note, error) {
	vec, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, WrapError(err, "failed to embed query")
	}

	results, err := s.vectors.Search(ctx, s.collection, vec, k, map[string]string{"user_id": userID})
	if err != nil {
		return nil, WrapError(err, "failed to search index")
	}

	notes := make([]chat.Note, 0, len(results))
	for _, res := range results {
		n, err := s.notes.GetByID(ctx, res.PointID)
		if err != nil {
			// Index entries can outlive their notes; skip strays.
			continue
		}
		if n.UserID != userID {
			continue
		}
		notes = append(notes, *n)
	}
	return notes, nil
}

func (s *noteService) scanSearch(ctx context.Context, userID, query string, k int) ([]chat.Note, error) {
	all, err := s.notes.GetAll(ctx, userID)
	if err != nil {
		return nil, WrapError(err, "failed to list notes")
	}

	needle := strings.ToLower(query)
	matches := make([]chat.Note, 0)
	for _, n := range all {
		if strings.Contains(strings.ToLower(n.Title), needle) || strings.Contains(strings.ToLower(n.Content), needle) {
			matches = append(matches, n)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// index upserts the note into the vector index. Best effort: a failure is
// logged, never returned, because sqlite already holds the note.
func (s *noteService) index(ctx context.Context, n *chat.Note) {
	if s.embedder == nil || s.vectors == nil {
		return
	}
	logger := contextutil.LoggerFromContext(ctx)

	vec, err := s.embedder.EmbedOne(ctx, n.Title+"\n"+n.Content)
	if err != nil {
		logger.WarnContext(ctx, "failed to embed note", "note_id", n.ID, "error", err)
		return
	}

	point := vectorstore.Point{
		ID:  n.ID,
		Vec: vec,
		Meta: map[string]any{
			"user_id": n.UserID,
			"title":   n.Title,
		},
	}
	if err := s.vectors.Upsert(ctx, s.collection, []vectorstore.Point{point}); err != nil {
		logger.WarnContext(ctx, "failed to index note", "note_id", n.ID, "error", err)
	}
}

func (s *noteService) ownedNote(ctx context.Context, userID, noteID string) (*chat.Note, error) {
	n, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, WrapError(err, "failed to load note")
	}
	if n.UserID != userID {
		return nil, ErrNotFound
	}
	return n, nil
}

// ownedChat mirrors the chat service's ownership check for pin-from-message.
func (s *noteService) ownedChat(ctx context.Context, userID, chatID string) (*chat.Chat, error) {
	c, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, WrapError(err, "failed to load chat")
	}
	if c.UserID != userID {
		return nil, ErrNotFound
	}
	return c, nil
}
