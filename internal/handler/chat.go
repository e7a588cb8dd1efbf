package handler

import (
	"log/slog"
	"net/http"

	"cartable/internal/domain/models/pedagogy"
	"cartable/internal/domain/services"
	"cartable/internal/httputil"
)

// ChatHandler relays messages to the AI assistant
type ChatHandler struct {
	chatService services.ChatService
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService services.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

type sendMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

type sendMessageResponse struct {
	ConversationID string               `json:"conversation_id"`
	Reply          pedagogy.ChatMessage `json:"reply"`
}

// SendMessage handles POST /api/chat
// Without a conversation_id a new conversation is started.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.ConversationID == "" {
		req.ConversationID = h.chatService.Start(callerFrom(r))
	}

	reply, err := h.chatService.Send(r.Context(), callerFrom(r), req.ConversationID, req.Message)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sendMessageResponse{
		ConversationID: req.ConversationID,
		Reply:          *reply,
	})
}

// GetConversation handles GET /api/chat/{id}
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.chatService.Conversation(callerFrom(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, conv)
}

// ResetConversation handles DELETE /api/chat/{id}
func (h *ChatHandler) ResetConversation(w http.ResponseWriter, r *http.Request) {
	if err := h.chatService.Reset(callerFrom(r), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
