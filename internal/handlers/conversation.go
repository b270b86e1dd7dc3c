package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"multichat/internal/contextutil"
	"multichat/internal/service"
	"multichat/internal/storage"
)

// ConversationHandler handles HTTP requests for conversations.
type ConversationHandler struct {
	chatService service.ChatService
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(chatService service.ChatService) *ConversationHandler {
	return &ConversationHandler{chatService: chatService}
}

// chatWindowData holds template data for the chat window fragment.
type chatWindowData struct {
	Conversation *storage.Conversation
	Messages     []storage.Message
}

// Create handles POST /conversations and renders the new conversation item.
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	name := r.FormValue("name")
	if name == "" {
		name = "New Chat"
	}

	conv, err := h.chatService.CreateConversation(ctx, name)
	if err != nil {
		logger.ErrorContext(ctx, "failed to create conversation", "error", err)
		http.Error(w, "Failed to create conversation", http.StatusInternalServerError)
		return
	}

	if err := renderFragment(w, "conversation_item", conv); err != nil {
		logger.ErrorContext(ctx, "failed to render conversation item", "error", err)
	}
}

// Get handles GET /conversations/{id} and renders the chat window.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid conversation id", http.StatusBadRequest)
		return
	}

	conv, msgs, err := h.chatService.GetConversation(ctx, id)
	if errors.Is(err, service.ErrNotFound) {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to get conversation", "id", id, "error", err)
		http.Error(w, "Failed to get conversation", http.StatusInternalServerError)
		return
	}

	data := chatWindowData{Conversation: conv, Messages: msgs}
	if err := renderFragment(w, "chat_window", data); err != nil {
		logger.ErrorContext(ctx, "failed to render chat window", "error", err)
	}
}

// Delete handles DELETE /conversations/{id}. Messages are removed with
// their conversation; the response body is empty.
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid conversation id", http.StatusBadRequest)
		return
	}

	err = h.chatService.DeleteConversation(ctx, id)
	if errors.Is(err, service.ErrNotFound) {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete conversation", "id", id, "error", err)
		http.Error(w, "Failed to delete conversation", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
