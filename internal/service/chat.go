package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_completion_client.go -package=mocks chatbox-ai/internal/service CompletionClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService chatbox-ai/internal/service ChatService

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"chatbox-ai/internal/contextutil"
	"chatbox-ai/internal/llm"
	"chatbox-ai/internal/storage"
)

// CompletionClient is an interface for the external LLM API.
// This interface is defined from the service layer's perspective (consumer-first).
type CompletionClient interface {
	// Complete sends a conversation with model settings and returns the reply text.
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
}

// Defaults carries the configuration defaults new sessions are created from.
type Defaults struct {
	Model           string
	Temperature     float64
	MaxTokens       int
	AvailableModels []string
}

// Conversation is a session's settings together with its ordered messages.
type Conversation struct {
	Session  storage.SessionRecord
	Messages []storage.MessageRecord
}

// ChatService provides session-scoped chat functionality. Each session owns an
// ordered conversation and a set of model settings; the three mutating
// operations map to the user events of the chat page: submitting a message,
// changing the model, and clearing the history.
type ChatService interface {
	// CreateSession creates a new empty session from the configured defaults.
	CreateSession(ctx context.Context) (*storage.SessionRecord, error)
	// History returns a session's settings and messages in order.
	History(ctx context.Context, sessionID string) (*Conversation, error)
	// Submit appends the user message, runs a completion over the full
	// conversation, appends the reply as the assistant message, and returns
	// both appended messages. Completion failures do not fail the call: the
	// failure text becomes the assistant message.
	Submit(ctx context.Context, sessionID, text string) (user, assistant *storage.MessageRecord, err error)
	// SelectModel changes a session's model. The model must be allow-listed.
	SelectModel(ctx context.Context, sessionID, model string) (*storage.SessionRecord, error)
	// Clear empties a session's conversation, keeping the session and settings.
	Clear(ctx context.Context, sessionID string) error
	// DeleteSession removes a session and its conversation entirely.
	DeleteSession(ctx context.Context, sessionID string) error
	// AvailableModels returns the model allow-list.
	AvailableModels() []string
}

// chatService implements ChatService.
type chatService struct {
	store       storage.SessionStore
	completions CompletionClient
	defaults    Defaults
}

// NewChatService creates a new ChatService.
func NewChatService(store storage.SessionStore, completions CompletionClient, defaults Defaults) ChatService {
	return &chatService{
		store:       store,
		completions: completions,
		defaults:    defaults,
	}
}

// CreateSession creates a new empty session from the configured defaults.
func (s *chatService) CreateSession(ctx context.Context) (*storage.SessionRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	session := &storage.SessionRecord{
		Model:       s.resolveModel(s.defaults.Model),
		Temperature: s.defaults.Temperature,
		MaxTokens:   s.defaults.MaxTokens,
	}
	if err := s.store.Create(ctx, session); err != nil {
		logger.ErrorContext(ctx, "failed to create session", "error", err)
		return nil, WrapError(err, "failed to create session")
	}

	logger.InfoContext(ctx, "session created", "session_id", session.ID, "model", session.Model)
	return session, nil
}

// History returns a session's settings and messages in order.
func (s *chatService) History(ctx context.Context, sessionID string) (*Conversation, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages, err := s.store.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, WrapError(err, "failed to list messages")
	}

	return &Conversation{Session: *session, Messages: messages}, nil
}

// Submit processes one user submission. Exactly one submission is handled per
// call; the completion blocks until the client returns or times out.
func (s *chatService) Submit(ctx context.Context, sessionID, text string) (*storage.MessageRecord, *storage.MessageRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if text == "" {
		logger.WarnContext(ctx, "empty message in chat submission", "session_id", sessionID)
		return nil, nil, &ValidationError{
			Field:   "message",
			Message: "cannot be empty",
		}
	}

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	userMsg := &storage.MessageRecord{
		SessionID: sessionID,
		Role:      storage.RoleUser,
		Content:   text,
	}
	if err := s.store.AppendMessage(ctx, userMsg); err != nil {
		return nil, nil, WrapError(err, "failed to append user message")
	}

	history, err := s.store.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, nil, WrapError(err, "failed to list messages")
	}

	reply, err := s.completions.Complete(ctx, llm.CompletionRequest{
		Model:       session.Model,
		MaxTokens:   session.MaxTokens,
		Temperature: session.Temperature,
		Messages:    toMessages(history),
	})
	if err != nil {
		// The failure text becomes the assistant turn and the conversation
		// stays usable.
		logger.ErrorContext(ctx, "completion failed", "session_id", sessionID, "error", err)
		reply = errorReply(err)
	} else {
		logger.InfoContext(ctx, "completion succeeded",
			"session_id", sessionID, "model", session.Model, "reply_length", len(reply))
	}

	assistantMsg := &storage.MessageRecord{
		SessionID: sessionID,
		Role:      storage.RoleAssistant,
		Content:   reply,
	}
	if err := s.store.AppendMessage(ctx, assistantMsg); err != nil {
		return nil, nil, WrapError(err, "failed to append assistant message")
	}

	return userMsg, assistantMsg, nil
}

// SelectModel changes a session's model after checking the allow-list.
func (s *chatService) SelectModel(ctx context.Context, sessionID, model string) (*storage.SessionRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if !slices.Contains(s.defaults.AvailableModels, model) {
		logger.WarnContext(ctx, "rejected model selection", "session_id", sessionID, "model", model)
		return nil, fmt.Errorf("%w: %s", ErrModelNotAllowed, model)
	}

	if err := s.store.UpdateModel(ctx, sessionID, model); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
		}
		return nil, WrapError(err, "failed to update model")
	}

	logger.InfoContext(ctx, "model selected", "session_id", sessionID, "model", model)
	return s.getSession(ctx, sessionID)
}

// Clear empties a session's conversation.
func (s *chatService) Clear(ctx context.Context, sessionID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := s.store.ClearMessages(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
		}
		return WrapError(err, "failed to clear messages")
	}

	logger.InfoContext(ctx, "conversation cleared", "session_id", sessionID)
	return nil
}

// DeleteSession removes a session and its conversation.
func (s *chatService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
		}
		return WrapError(err, "failed to delete session")
	}
	return nil
}

// AvailableModels returns the model allow-list.
func (s *chatService) AvailableModels() []string {
	models := make([]string, len(s.defaults.AvailableModels))
	copy(models, s.defaults.AvailableModels)
	return models
}

// getSession loads a session and guards its model against a stale selection.
func (s *chatService) getSession(ctx context.Context, sessionID string) (*storage.SessionRecord, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
		}
		return nil, WrapError(err, "failed to load session")
	}
	session.Model = s.resolveModel(session.Model)
	return session, nil
}

// resolveModel maps a model that has fallen out of the allow-list (for example
// after the list changed between sessions) to the first allow-listed entry.
// The stored value is left untouched; the resolution happens on every read.
func (s *chatService) resolveModel(model string) string {
	if slices.Contains(s.defaults.AvailableModels, model) {
		return model
	}
	if len(s.defaults.AvailableModels) == 0 {
		return model
	}
	return s.defaults.AvailableModels[0]
}

// toMessages converts stored records to the completion wire format, preserving
// order. The whole conversation is sent: no truncation, no windowing.
func toMessages(records []storage.MessageRecord) []llm.Message {
	messages := make([]llm.Message, len(records))
	for i, rec := range records {
		messages[i] = llm.Message{Role: rec.Role, Content: rec.Content}
	}
	return messages
}

// errorReply derives the visible assistant text for a failed completion.
func errorReply(err error) string {
	if errors.Is(err, llm.ErrMissingCredential) {
		return "API key not found. Please set ANTHROPIC_API_KEY in your environment."
	}
	return fmt.Sprintf("Error generating response: %s", err.Error())
}
