package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"multichat/internal/contextutil"
	"multichat/internal/service"
	"multichat/internal/storage"
)

// MessageHandler handles HTTP requests for sending messages.
type MessageHandler struct {
	chatService service.ChatService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(chatService service.ChatService) *MessageHandler {
	return &MessageHandler{chatService: chatService}
}

// messagePairData holds template data for the message pair fragment.
type messagePairData struct {
	UserMsg *storage.Message
	BotMsg  *storage.Message
}

// ServeHTTP handles POST /message: persists the user message, routes it to
// a bot, persists the reply, and renders both messages.
func (h *MessageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	conversationIDStr := r.FormValue("conversation_id")
	content := r.FormValue("content")
	if conversationIDStr == "" || content == "" {
		logger.WarnContext(ctx, "message request with missing data")
		http.Error(w, "Missing data", http.StatusBadRequest)
		return
	}

	conversationID, err := strconv.ParseInt(conversationIDStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid conversation id", http.StatusBadRequest)
		return
	}

	userMsg, botMsg, err := h.chatService.PostMessage(ctx, conversationID, content)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			http.Error(w, validationErr.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, "Conversation not found", http.StatusNotFound)
		default:
			logger.ErrorContext(ctx, "failed to process message", "conversation_id", conversationID, "error", err)
			http.Error(w, "Failed to process message", http.StatusInternalServerError)
		}
		return
	}

	data := messagePairData{UserMsg: userMsg, BotMsg: botMsg}
	if err := renderFragment(w, "message_pair", data); err != nil {
		logger.ErrorContext(ctx, "failed to render message pair", "error", err)
	}
}
