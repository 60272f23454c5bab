package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"secrecy-ai/internal/chat"
	"secrecy-ai/internal/events"
	"secrecy-ai/internal/service"
	"secrecy-ai/internal/storage"
)

type noteFixture struct {
	svc   service.NoteService
	chats storage.ChatStore
	notes storage.NoteStore
}

func newNoteFixture(t *testing.T) *noteFixture {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	bus := events.NewBus()
	chats := storage.NewChatRepo(db, bus)
	notes := storage.NewNoteRepo(db, bus)

	return &noteFixture{
		// No embedder or vector store configured: search uses the scan path.
		svc:   service.NewNoteService(notes, chats, nil, nil, ""),
		chats: chats,
		notes: notes,
	}
}

func TestNoteService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	f := newNoteFixture(t)

	n, err := f.svc.CreateNote(ctx, "user-1", "Meeting notes", "Discussed roadmap")
	if err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}

	got, err := f.svc.GetNote(ctx, "user-1", n.ID)
	if err != nil {
		t.Fatalf("GetNote() error = %v", err)
	}
	if got.Title != "Meeting notes" || got.Content != "Discussed roadmap" {
		t.Errorf("GetNote() = %q / %q", got.Title, got.Content)
	}

	if _, err := f.svc.GetNote(ctx, "user-2", n.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("GetNote() as other user error = %v, want ErrNotFound", err)
	}
}

func TestNoteService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newNoteFixture(t)

	var vErr *service.ValidationError
	if _, err := f.svc.CreateNote(ctx, "user-1", "", "content"); !errors.As(err, &vErr) {
		t.Errorf("CreateNote() with empty title error = %v, want ValidationError", err)
	}
	if _, err := f.svc.CreateNote(ctx, "user-1", "title", "  "); !errors.As(err, &vErr) {
		t.Errorf("CreateNote() with empty content error = %v, want ValidationError", err)
	}
	if _, err := f.svc.CreateNote(ctx, "", "title", "content"); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("CreateNote() without user error = %v, want ErrUnauthorized", err)
	}
}

func TestNoteService_CreateFromMessage(t *testing.T) {
	ctx := context.Background()
	f := newNoteFixture(t)

	c := chat.NewChat("user-1")
	msg := chat.NewMessage(chat.SenderAI, "Here is the full explanation you asked for.")
	c.Append(chat.NewMessage(chat.SenderUser, "Explain this"))
	c.Append(msg)
	if err := f.chats.Save(ctx, c); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	n, err := f.svc.CreateNoteFromMessage(ctx, "user-1", c.ID, msg.ID, "")
	if err != nil {
		t.Fatalf("CreateNoteFromMessage() error = %v", err)
	}
	if n.Title != "🔒 Secret Note from Chat" {
		t.Errorf("default note title = %q", n.Title)
	}
	if n.Content != msg.Text {
		t.Errorf("note content = %q, want message text", n.Content)
	}
	if n.SourceChatID != c.ID || n.SourceMessageID != msg.ID {
		t.Error("note missing source back-references")
	}

	t.Run("custom title", func(t *testing.T) {
		n2, err := f.svc.CreateNoteFromMessage(ctx, "user-1", c.ID, msg.ID, "Key takeaway")
		if err != nil {
			t.Fatalf("CreateNoteFromMessage() error = %v", err)
		}
		if n2.Title != "Key takeaway" {
			t.Errorf("note title = %q, want Key takeaway", n2.Title)
		}
	})

	t.Run("unknown message", func(t *testing.T) {
		if _, err := f.svc.CreateNoteFromMessage(ctx, "user-1", c.ID, "missing", ""); !errors.Is(err, service.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("note survives chat deletion", func(t *testing.T) {
		if err := f.chats.Delete(ctx, c.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		got, err := f.svc.GetNote(ctx, "user-1", n.ID)
		if err != nil {
			t.Fatalf("GetNote() after chat delete error = %v", err)
		}
		if got.SourceChatID != c.ID {
			t.Errorf("note lost its back-reference: %q", got.SourceChatID)
		}
	})
}

func TestNoteService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newNoteFixture(t)

	n, err := f.svc.CreateNote(ctx, "user-1", "Draft", "v1")
	if err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}

	updated, err := f.svc.UpdateNote(ctx, "user-1", n.ID, "Final", "v2")
	if err != nil {
		t.Fatalf("UpdateNote() error = %v", err)
	}
	if updated.Title != "Final" || updated.Content != "v2" {
		t.Errorf("UpdateNote() = %q / %q", updated.Title, updated.Content)
	}
	if !updated.UpdatedAt.After(n.CreatedAt) && !updated.UpdatedAt.Equal(n.CreatedAt) {
		t.Error("UpdateNote() did not advance UpdatedAt")
	}

	if err := f.svc.DeleteNote(ctx, "user-2", n.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("DeleteNote() as other user error = %v, want ErrNotFound", err)
	}
	if err := f.svc.DeleteNote(ctx, "user-1", n.ID); err != nil {
		t.Fatalf("DeleteNote() error = %v", err)
	}
	if _, err := f.svc.GetNote(ctx, "user-1", n.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("GetNote() after delete error = %v, want ErrNotFound", err)
	}
}

func TestNoteService_SearchNotes_Scan(t *testing.T) {
	ctx := context.Background()
	f := newNoteFixture(t)

	seed := []struct{ title, content string }{
		{"Quantum reading list", "Papers on tunneling"},
		{"Groceries", "Milk, eggs"},
		{"Physics homework", "Covers quantum entanglement"},
	}
	for _, s := range seed {
		if _, err := f.svc.CreateNote(ctx, "user-1", s.title, s.content); err != nil {
			t.Fatalf("CreateNote() error = %v", err)
		}
	}
	if _, err := f.svc.CreateNote(ctx, "user-2", "Quantum other user", "hidden"); err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}

	results, err := f.svc.SearchNotes(ctx, "user-1", "quantum", 10)
	if err != nil {
		t.Fatalf("SearchNotes() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("SearchNotes() returned %d notes, want 2", len(results))
	}
	for _, n := range results {
		if n.UserID != "user-1" {
			t.Errorf("SearchNotes() leaked note for %q", n.UserID)
		}
	}

	t.Run("limit", func(t *testing.T) {
		results, err := f.svc.SearchNotes(ctx, "user-1", "quantum", 1)
		if err != nil {
			t.Fatalf("SearchNotes() error = %v", err)
		}
		if len(results) != 1 {
			t.Errorf("SearchNotes() returned %d notes, want 1", len(results))
		}
	})

	t.Run("empty query", func(t *testing.T) {
		var vErr *service.ValidationError
		if _, err := f.svc.SearchNotes(ctx, "user-1", "  ", 10); !errors.As(err, &vErr) {
			t.Errorf("SearchNotes() error = %v, want ValidationError", err)
		}
	})
}
