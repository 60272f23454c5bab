package chat

import "time"

// Sender identifies the author of a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one turn in a conversation. Messages are immutable once created
// and only ever appended to a chat.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Chat is an ordered, titled thread of messages belonging to one user.
// Message order is insertion order, which is also chronological order.
type Chat struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Title         string    `json:"title"`
	Messages      []Message `json:"messages"`
	CreatedAt     time.Time `json:"createdAt"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	IsPinned      bool      `json:"isPinned"`
}

// Note is a standalone piece of saved text, optionally traceable back to the
// message and chat it was pinned from. The source fields are back-references,
// not ownership: deleting the source chat leaves the note intact.
type Note struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	SourceMessageID string    `json:"sourceMessageId,omitempty"`
	SourceChatID    string    `json:"sourceChatId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
