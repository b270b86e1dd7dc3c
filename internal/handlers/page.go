package handlers

import (
	"net/http"

	"multichat/internal/contextutil"
	"multichat/internal/service"
	"multichat/internal/storage"
)

// PageHandler serves the main chat page.
type PageHandler struct {
	chatService service.ChatService
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(chatService service.ChatService) *PageHandler {
	return &PageHandler{chatService: chatService}
}

// indexData holds template data for the index page.
type indexData struct {
	Conversations []storage.Conversation
	Bots          []storage.Bot
}

// ServeHTTP handles GET / with the conversation list and bot roster.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	convs, err := h.chatService.ListConversations(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list conversations", "error", err)
		http.Error(w, "Failed to load page", http.StatusInternalServerError)
		return
	}

	bots, err := h.chatService.ListBots(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list bots", "error", err)
		http.Error(w, "Failed to load page", http.StatusInternalServerError)
		return
	}

	data := indexData{Conversations: convs, Bots: bots}
	if err := renderFragment(w, "index", data); err != nil {
		logger.ErrorContext(ctx, "failed to render index page", "error", err)
	}
}
