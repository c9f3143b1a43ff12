package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"chatbox-ai/internal/contextutil"
	"chatbox-ai/internal/render"
	"chatbox-ai/internal/service"
	"chatbox-ai/internal/storage"
)

// SessionHandler handles HTTP requests for session lifecycle and settings.
type SessionHandler struct {
	chatService service.ChatService
	markdown    *render.Markdown
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(chatService service.ChatService, markdown *render.Markdown) *SessionHandler {
	return &SessionHandler{
		chatService: chatService,
		markdown:    markdown,
	}
}

// SessionResponse represents a session's settings in HTTP responses.
type SessionResponse struct {
	SessionID       string   `json:"session_id"`
	Model           string   `json:"model"`
	Temperature     float64  `json:"temperature"`
	MaxTokens       int      `json:"max_tokens"`
	AvailableModels []string `json:"available_models"`
}

// MessageResponse represents one conversation turn in HTTP responses. HTML is
// the server-rendered markdown of Content.
type MessageResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	HTML      string `json:"html"`
	Seq       int    `json:"seq"`
	CreatedAt string `json:"created_at,omitempty"`
}

// HistoryResponse represents a session with its full conversation.
type HistoryResponse struct {
	Session  SessionResponse   `json:"session"`
	Messages []MessageResponse `json:"messages"`
}

// SelectModelRequest represents the payload for a model change.
type SelectModelRequest struct {
	Model string `json:"model"`
}

// newSessionResponse builds the settings payload, always carrying the current
// allow-list so the page can rebuild its selector.
func newSessionResponse(chatService service.ChatService, session *storage.SessionRecord) SessionResponse {
	return SessionResponse{
		SessionID:       session.ID,
		Model:           session.Model,
		Temperature:     session.Temperature,
		MaxTokens:       session.MaxTokens,
		AvailableModels: chatService.AvailableModels(),
	}
}

func newMessageResponse(markdown *render.Markdown, msg *storage.MessageRecord) MessageResponse {
	resp := MessageResponse{
		ID:      msg.ID,
		Role:    msg.Role,
		Content: msg.Content,
		HTML:    markdown.Render(msg.Content),
		Seq:     msg.Seq,
	}
	if !msg.CreatedAt.IsZero() {
		resp.CreatedAt = msg.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// Create handles POST requests that open a new session.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.chatService.CreateSession(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, newSessionResponse(h.chatService, session))
}

// Get handles GET requests for a session's settings and conversation.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	conv, err := h.chatService.History(ctx, sessionID)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load session")
		return
	}

	resp := HistoryResponse{
		Session:  newSessionResponse(h.chatService, &conv.Session),
		Messages: make([]MessageResponse, 0, len(conv.Messages)),
	}
	for i := range conv.Messages {
		resp.Messages = append(resp.Messages, newMessageResponse(h.markdown, &conv.Messages[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// SelectModel handles PUT requests that change a session's model.
func (h *SessionHandler) SelectModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	sessionID := chi.URLParam(r, "sessionID")

	var req SelectModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.chatService.SelectModel(ctx, sessionID, req.Model)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to select model")
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(h.chatService, session))
}

// Clear handles POST requests that empty a session's conversation.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatService.Clear(ctx, sessionID); err != nil {
		handleServiceError(w, ctx, err, "Failed to clear conversation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE requests that remove a session entirely.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatService.DeleteSession(ctx, sessionID); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
