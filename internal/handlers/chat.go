package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chatbox-ai/internal/contextutil"
	"chatbox-ai/internal/render"
	"chatbox-ai/internal/service"
)

// ChatHandler handles HTTP requests that submit a message to a conversation.
type ChatHandler struct {
	chatService service.ChatService
	markdown    *render.Markdown
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService, markdown *render.Markdown) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		markdown:    markdown,
	}
}

// SubmitRequest represents the HTTP request payload for a submission.
type SubmitRequest struct {
	Message string `json:"message"`
}

// SubmitResponse carries the two messages a submission appends: the user turn
// and the assistant turn (which may be a completion failure rendered as text).
type SubmitResponse struct {
	Messages []MessageResponse `json:"messages"`
}

// ServeHTTP handles POST requests that submit one message. The call blocks
// until the completion resolves or fails; failures surface inside the
// assistant message, not as HTTP errors.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	sessionID := chi.URLParam(r, "sessionID")

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, assistant, err := h.chatService.Submit(ctx, sessionID, req.Message)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to process submission")
		return
	}

	resp := SubmitResponse{
		Messages: []MessageResponse{
			newMessageResponse(h.markdown, user),
			newMessageResponse(h.markdown, assistant),
		},
	}

	writeJSON(w, http.StatusOK, resp)
}
