// Package service holds the application logic between the HTTP handlers and
// the stores: send orchestration, note management, and the site analyzer.
package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_completion_client.go -package=mocks secrecy-ai/internal/service CompletionClient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"secrecy-ai/internal/chat"
	"secrecy-ai/internal/contextutil"
	"secrecy-ai/internal/ledger"
	"secrecy-ai/internal/modes"
	"secrecy-ai/internal/storage"
)

// FallbackReply is appended in place of the model's answer when generation
// fails. Tokens stay spent; retrying is the user's call.
const FallbackReply = "🔒 I apologize, I'm having trouble responding right now. Please try again."

// historyWindow is how many trailing messages go into the prompt context.
const historyWindow = 6

// CompletionClient is an interface for the text generation API, defined from
// the service layer's perspective (consumer-first).
type CompletionClient interface {
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}

// SendRequest represents one send-message request.
type SendRequest struct {
	ChatID string
	UserID string
	Text   string
	Mode   modes.Mode
}

// SendResult is the outcome of a completed send.
type SendResult struct {
	Chat        *chat.Chat
	UserMessage chat.Message
	Reply       chat.Message
	ReplyFailed bool
	Cost        int
}

// ChatService provides conversation functionality.
type ChatService interface {
	SendMessage(ctx context.Context, req SendRequest) (*SendResult, error)
	CreateChat(ctx context.Context, userID string) (*chat.Chat, error)
	ListChats(ctx context.Context, userID string) ([]chat.Chat, error)
	GetChat(ctx context.Context, userID, chatID string) (*chat.Chat, error)
	RenameChat(ctx context.Context, userID, chatID, title string) (*chat.Chat, error)
	SetPinned(ctx context.Context, userID, chatID string, pinned bool) (*chat.Chat, error)
	ClearChat(ctx context.Context, userID, chatID string) (*chat.Chat, error)
	DeleteChat(ctx context.Context, userID, chatID string) error
}

// chatService implements ChatService.
type chatService struct {
	chats  storage.ChatStore
	tokens *ledger.Ledger
	llm    CompletionClient

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewChatService creates a new ChatService.
func NewChatService(chats storage.ChatStore, tokens *ledger.Ledger, llm CompletionClient) ChatService {
	return &chatService{
		chats:    chats,
		tokens:   tokens,
		llm:      llm,
		inFlight: make(map[string]struct{}),
	}
}

// acquire marks chatID as having a send in progress.
func (s *chatService) acquire(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[chatID]; busy {
		return false
	}
	s.inFlight[chatID] = struct{}{}
	return true
}

func (s *chatService) release(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, chatID)
}

// SendMessage runs the full send pipeline: validate, charge the ledger,
// append the user message, generate a reply, and append it. Sends on the
// same chat are serialized; a second concurrent send fails fast with
// ErrSendInFlight rather than interleaving histories.
func (s *chatService) SendMessage(ctx context.Context, req SendRequest) (*SendResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.UserID == "" {
		return nil, ErrUnauthorized
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, &ValidationError{Field: "text", Message: "cannot be empty"}
	}

	if !s.acquire(req.ChatID) {
		logger.WarnContext(ctx, "send rejected, chat busy", "chat_id", req.ChatID)
		return nil, ErrSendInFlight
	}
	defer s.release(req.ChatID)

	c, err := s.ownedChat(ctx, req.UserID, req.ChatID)
	if err != nil {
		return nil, err
	}

	cost := req.Mode.Cost()
	ok, err := s.tokens.Deduct(ctx, req.UserID, cost)
	if err != nil {
		return nil, WrapError(err, "failed to charge tokens")
	}
	if !ok {
		logger.InfoContext(ctx, "send refused, insufficient tokens", "user_id", req.UserID, "mode", req.Mode.String(), "cost", cost)
		return nil, ErrInsufficientTokens
	}

	userMsg := chat.NewMessage(chat.SenderUser, text)
	c.Append(userMsg)
	if err := s.chats.Save(ctx, c); err != nil {
		return nil, WrapError(err, "failed to save user message")
	}

	prompt := buildPrompt(req.Mode, c.Messages, text)
	replyText, genErr := s.llm.Generate(ctx, prompt, req.Mode.Temperature())
	replyFailed := false
	if genErr != nil {
		logger.ErrorContext(ctx, "generation failed", "chat_id", c.ID, "mode", req.Mode.String(), "error", genErr)
		replyText = FallbackReply
		replyFailed = true
	}

	reply := chat.NewMessage(chat.SenderAI, replyText)
	c.Append(reply)
	if err := s.chats.Save(ctx, c); err != nil {
		return nil, WrapError(err, "failed to save reply")
	}

	logger.InfoContext(ctx, "message sent", "chat_id", c.ID, "mode", req.Mode.String(), "cost", cost, "reply_failed", replyFailed)
	return &SendResult{
		Chat:        c,
		UserMessage: userMsg,
		Reply:       reply,
		ReplyFailed: replyFailed,
		Cost:        cost,
	}, nil
}

// CreateChat creates an empty chat for the user.
func (s *chatService) CreateChat(ctx context.Context, userID string) (*chat.Chat, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	c := chat.NewChat(userID)
	if err := s.chats.Save(ctx, c); err != nil {
		return nil, WrapError(err, "failed to save chat")
	}
	return c, nil
}

// ListChats returns all chats belonging to the user.
func (s *chatService) ListChats(ctx context.Context, userID string) ([]chat.Chat, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.chats.GetAll(ctx, userID)
}

// GetChat returns one chat owned by the user.
func (s *chatService) GetChat(ctx context.Context, userID, chatID string) (*chat.Chat, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.ownedChat(ctx, userID, chatID)
}

// RenameChat sets a user-chosen title. The new title sticks: it is never
// re-derived from message content afterwards.
func (s *chatService) RenameChat(ctx context.Context, userID, chatID, title string) (*chat.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "cannot be empty"}
	}
	return s.updateChat(ctx, userID, chatID, func(c *chat.Chat) {
		c.Title = title
	})
}

// SetPinned updates the chat's pin state.
func (s *chatService) SetPinned(ctx context.Context, userID, chatID string, pinned bool) (*chat.Chat, error) {
	return s.updateChat(ctx, userID, chatID, func(c *chat.Chat) {
		c.IsPinned = pinned
	})
}

// ClearChat empties the chat's message history.
func (s *chatService) ClearChat(ctx context.Context, userID, chatID string) (*chat.Chat, error) {
	return s.updateChat(ctx, userID, chatID, func(c *chat.Chat) {
		c.Clear()
	})
}

// DeleteChat removes the chat. Notes pinned from it are left alone.
func (s *chatService) DeleteChat(ctx context.Context, userID, chatID string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	if _, err := s.ownedChat(ctx, userID, chatID); err != nil {
		return err
	}
	return s.chats.Delete(ctx, chatID)
}

func (s *chatService) updateChat(ctx context.Context, userID, chatID string, mutate func(*chat.Chat)) (*chat.Chat, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	c, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	mutate(c)
	if err := s.chats.Save(ctx, c); err != nil {
		return nil, WrapError(err, "failed to save chat")
	}
	return c, nil
}

// ownedChat loads a chat and checks ownership. A chat owned by someone else
// reads as not found so ids do not leak across users.
func (s *chatService) ownedChat(ctx context.Context, userID, chatID string) (*chat.Chat, error) {
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

// buildPrompt assembles the generation prompt: mode policy, a window of
// recent history, and the current query.
func buildPrompt(mode modes.Mode, history []chat.Message, query string) string {
	var b strings.Builder
	b.WriteString(mode.SystemPrompt())

	// The last entry in history is the query itself; the context window is
	// everything before it.
	context := history
	if n := len(context); n > 0 {
		context = context[:n-1]
	}
	if len(context) > historyWindow {
		context = context[len(context)-historyWindow:]
	}
	if len(context) > 0 {
		b.WriteString("\n\nCONVERSATION CONTEXT:\n")
		for _, m := range context {
			role := "User"
			if m.Sender == chat.SenderAI {
				role = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, m.Text)
		}
	}

	fmt.Fprintf(&b, "\nUSER QUERY: %s\n\nRespond in the style and structure the protocol above requires.", query)
	return b.String()
}
