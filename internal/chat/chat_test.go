package chat

import (
	"fmt"
	"testing"
	"time"
)

func TestNewChat(t *testing.T) {
	c := NewChat("user-1")

	if c.ID == "" {
		t.Error("NewChat() id is empty")
	}
	if c.Title != DefaultTitle {
		t.Errorf("NewChat() title = %q, want %q", c.Title, DefaultTitle)
	}
	if len(c.Messages) != 0 {
		t.Errorf("NewChat() has %d messages, want 0", len(c.Messages))
	}
	if c.LastMessageAt.Before(c.CreatedAt) {
		t.Error("NewChat() lastMessageAt before createdAt")
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "truncated to four words with ellipsis",
			text: "Explain quantum tunneling in simple terms",
			want: "🔒 Explain quantum tunneling in...",
		},
		{
			name: "exactly four words, no ellipsis",
			text: "four words right here",
			want: "🔒 four words right here",
		},
		{
			name: "short message",
			text: "hello",
			want: "🔒 hello",
		},
		{
			name: "whitespace only falls back to placeholder",
			text: "   ",
			want: DefaultTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.text); got != tt.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestChat_Append_DerivesTitleOnce(t *testing.T) {
	c := NewChat("user-1")

	c.Append(NewMessage(SenderUser, "Explain quantum tunneling in simple terms"))
	want := "🔒 Explain quantum tunneling in..."
	if c.Title != want {
		t.Fatalf("title after first user message = %q, want %q", c.Title, want)
	}

	// Further messages never change a derived title.
	c.Append(NewMessage(SenderAI, "Sure, imagine a ball and a hill."))
	c.Append(NewMessage(SenderUser, "Another completely different question"))
	if c.Title != want {
		t.Errorf("title changed to %q after later messages, want %q", c.Title, want)
	}
}

func TestChat_Append_UserSetTitleIsSticky(t *testing.T) {
	c := NewChat("user-1")
	c.Title = "My renamed thread"

	c.Append(NewMessage(SenderUser, "this must not retitle the chat"))

	if c.Title != "My renamed thread" {
		t.Errorf("title = %q, want user-set title preserved", c.Title)
	}
}

func TestChat_Append_Ordering(t *testing.T) {
	c := NewChat("user-1")

	for i := 0; i < 10; i++ {
		sender := SenderUser
		if i%2 == 1 {
			sender = SenderAI
		}
		c.Append(NewMessage(sender, fmt.Sprintf("message %d", i)))
	}

	if len(c.Messages) != 10 {
		t.Fatalf("len(messages) = %d, want 10", len(c.Messages))
	}
	for i := range c.Messages {
		if c.Messages[i].Text != fmt.Sprintf("message %d", i) {
			t.Fatalf("messages reordered at index %d: %q", i, c.Messages[i].Text)
		}
		if i > 0 && c.Messages[i].Timestamp.Before(c.Messages[i-1].Timestamp) {
			t.Fatalf("timestamp at %d earlier than predecessor", i)
		}
	}
	if !c.LastMessageAt.Equal(c.Messages[9].Timestamp) {
		t.Error("lastMessageAt not advanced to final append instant")
	}
}

func TestChat_Clear(t *testing.T) {
	c := NewChat("user-1")
	c.Append(NewMessage(SenderUser, "Explain quantum tunneling in simple terms"))
	c.IsPinned = true

	title := c.Title
	id := c.ID
	c.Clear()

	if len(c.Messages) != 0 {
		t.Errorf("Clear() left %d messages", len(c.Messages))
	}
	if c.Title != title {
		t.Errorf("Clear() changed title to %q", c.Title)
	}
	if c.ID != id || !c.IsPinned {
		t.Error("Clear() must preserve id and pin state")
	}
}

func TestNewMessage_IDsAreTimeSortable(t *testing.T) {
	a := NewMessage(SenderUser, "first")
	time.Sleep(2 * time.Millisecond)
	b := NewMessage(SenderUser, "second")

	if a.ID == b.ID {
		t.Fatal("message ids collide")
	}
	// Same-sender ids created later must sort later.
	if a.ID >= b.ID {
		t.Errorf("ids not time-sortable: %q >= %q", a.ID, b.ID)
	}
}

func TestNewNoteFromMessage(t *testing.T) {
	msg := NewMessage(SenderAI, "pinned content")

	note := NewNoteFromMessage("user-1", msg, "chat-1", "")
	if note.Title != "🔒 Secret Note from Chat" {
		t.Errorf("default note title = %q", note.Title)
	}
	if note.Content != "pinned content" {
		t.Errorf("note content = %q", note.Content)
	}
	if note.SourceMessageID != msg.ID || note.SourceChatID != "chat-1" {
		t.Error("note source back-references not set")
	}

	custom := NewNoteFromMessage("user-1", msg, "chat-1", "Saved answer")
	if custom.Title != "Saved answer" {
		t.Errorf("custom note title = %q, want %q", custom.Title, "Saved answer")
	}
}
