// Package chat holds the conversation aggregate: chats, their append-only
// message history, title derivation rules, and notes pinned from messages.
package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewChat creates an empty chat for userID with the placeholder title.
func NewChat(userID string) *Chat {
	now := time.Now().UTC()
	return &Chat{
		ID:            uuid.NewString(),
		UserID:        userID,
		Title:         DefaultTitle,
		Messages:      []Message{},
		CreatedAt:     now,
		LastMessageAt: now,
	}
}

// NewMessage creates a message authored by sender. Message ids sort by
// creation time: "<sender>-<unix-millis>-<suffix>".
func NewMessage(sender Sender, text string) Message {
	now := time.Now().UTC()
	return Message{
		ID:        fmt.Sprintf("%s-%013d-%s", sender, now.UnixMilli(), uuid.NewString()[:8]),
		Text:      text,
		Sender:    sender,
		Timestamp: now,
	}
}

// Append adds msg to the end of the history and advances LastMessageAt.
// While the title is still a placeholder, the first user-authored message
// also retitles the chat; once the title is real it is never overwritten
// here (renaming is the only way to change it again).
func (c *Chat) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.LastMessageAt = msg.Timestamp

	if IsPlaceholderTitle(c.Title) {
		if first, ok := c.FirstUserMessage(); ok {
			c.Title = DeriveTitle(first.Text)
		}
	}
}

// FirstUserMessage returns the earliest user-authored message, if any.
func (c *Chat) FirstUserMessage() (Message, bool) {
	for _, m := range c.Messages {
		if m.Sender == SenderUser {
			return m, true
		}
	}
	return Message{}, false
}

// Clear empties the message history. The id, title, and pin state are
// preserved; a content-derived title stays in place.
func (c *Chat) Clear() {
	c.Messages = []Message{}
}

// NewNoteFromMessage pins a message as a note. The note back-references the
// source chat and message but does not share their lifecycle.
func NewNoteFromMessage(userID string, msg Message, chatID, customTitle string) *Note {
	title := customTitle
	if title == "" {
		title = "🔒 Secret Note from Chat"
	}
	now := time.Now().UTC()
	return &Note{
		ID:              uuid.NewString(),
		UserID:          userID,
		Title:           title,
		Content:         msg.Text,
		SourceMessageID: msg.ID,
		SourceChatID:    chatID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// NewNote creates a free-standing note from title and content.
func NewNote(userID, title, content string) *Note {
	now := time.Now().UTC()
	return &Note{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
