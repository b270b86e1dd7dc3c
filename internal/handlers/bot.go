package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"multichat/internal/contextutil"
	"multichat/internal/service"
)

// BotHandler handles HTTP requests for bot personas.
type BotHandler struct {
	chatService service.ChatService
}

// NewBotHandler creates a new BotHandler.
func NewBotHandler(chatService service.ChatService) *BotHandler {
	return &BotHandler{chatService: chatService}
}

// Create handles POST /bots and renders the new bot item.
func (h *BotHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	name := r.FormValue("name")
	role := r.FormValue("role")
	systemPrompt := r.FormValue("system_prompt")
	model := r.FormValue("model")

	bot, err := h.chatService.CreateBot(ctx, name, role, systemPrompt, model)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			logger.WarnContext(ctx, "failed to create bot", "error", err)
			http.Error(w, validationErr.Error(), http.StatusBadRequest)
			return
		}
		logger.ErrorContext(ctx, "failed to create bot", "error", err)
		http.Error(w, "Failed to create bot", http.StatusInternalServerError)
		return
	}

	if err := renderFragment(w, "bot_item", bot); err != nil {
		logger.ErrorContext(ctx, "failed to render bot item", "error", err)
	}
}

// Update handles PUT /bots/{id}. The backing model is the only mutable
// field; an omitted model keeps the current one.
func (h *BotHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid bot id", http.StatusBadRequest)
		return
	}

	bot, err := h.chatService.UpdateBotModel(ctx, id, r.FormValue("model"))
	if errors.Is(err, service.ErrNotFound) {
		http.Error(w, "Bot not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to update bot", "id", id, "error", err)
		http.Error(w, "Failed to update bot", http.StatusInternalServerError)
		return
	}

	logger.InfoContext(ctx, "bot model updated", "id", id, "model", bot.Model)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Updated"))
}
