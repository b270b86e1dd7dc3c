package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService multichat/internal/service ChatService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"multichat/internal/contextutil"
	"multichat/internal/storage"
)

// ChatService provides conversation, message, and bot operations.
type ChatService interface {
	// CreateConversation creates a new conversation with the given name.
	CreateConversation(ctx context.Context, name string) (*storage.Conversation, error)
	// GetConversation returns a conversation and its ordered messages.
	GetConversation(ctx context.Context, id int64) (*storage.Conversation, []storage.Message, error)
	// ListConversations returns all conversations, newest first.
	ListConversations(ctx context.Context) ([]storage.Conversation, error)
	// DeleteConversation removes a conversation and all of its messages.
	DeleteConversation(ctx context.Context, id int64) error
	// PostMessage persists a user message, routes it to a bot, and persists
	// the generated reply. Both persisted messages are returned.
	PostMessage(ctx context.Context, conversationID int64, content string) (*storage.Message, *storage.Message, error)
	// ListBots returns all configured bots in creation order.
	ListBots(ctx context.Context) ([]storage.Bot, error)
	// CreateBot creates a new bot persona.
	CreateBot(ctx context.Context, name, role, systemPrompt, model string) (*storage.Bot, error)
	// UpdateBotModel changes a bot's backing model.
	UpdateBotModel(ctx context.Context, id int64, model string) (*storage.Bot, error)
}

// chatService implements ChatService.
type chatService struct {
	bots         storage.BotStore
	convs        storage.ConversationStore
	msgs         storage.MessageStore
	router       *Router
	responder    *Responder
	defaultModel string
	logger       *slog.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(bots storage.BotStore, convs storage.ConversationStore, msgs storage.MessageStore,
	router *Router, responder *Responder, defaultModel string) ChatService {
	return &chatService{
		bots:         bots,
		convs:        convs,
		msgs:         msgs,
		router:       router,
		responder:    responder,
		defaultModel: defaultModel,
		logger:       slog.Default(),
	}
}

// CreateConversation creates a new conversation with the given name.
func (s *chatService) CreateConversation(ctx context.Context, name string) (*storage.Conversation, error) {
	logger := contextutil.LoggerFromContext(ctx)

	conv, err := s.convs.Create(ctx, name)
	if err != nil {
		return nil, WrapError(err, "failed to create conversation")
	}
	logger.InfoContext(ctx, "conversation created", "id", conv.ID, "name", conv.Name)
	return conv, nil
}

// GetConversation returns a conversation and its ordered messages.
func (s *chatService) GetConversation(ctx context.Context, id int64) (*storage.Conversation, []storage.Message, error) {
	conv, err := s.convs.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, WrapError(err, "failed to get conversation")
	}

	msgs, err := s.msgs.ListByConversation(ctx, id)
	if err != nil {
		return nil, nil, WrapError(err, "failed to list messages")
	}
	return conv, msgs, nil
}

// ListConversations returns all conversations, newest first.
func (s *chatService) ListConversations(ctx context.Context) ([]storage.Conversation, error) {
	convs, err := s.convs.ListAll(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to list conversations")
	}
	return convs, nil
}

// DeleteConversation removes a conversation and all of its messages.
func (s *chatService) DeleteConversation(ctx context.Context, id int64) error {
	logger := contextutil.LoggerFromContext(ctx)

	err := s.convs.Delete(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return WrapError(err, "failed to delete conversation")
	}
	logger.InfoContext(ctx, "conversation deleted", "id", id)
	return nil
}

// PostMessage persists the user message first so its timestamp precedes the
// reply's, then routes it to a bot and persists the generated reply.
// LLM failures never surface here: Router and Responder absorb them into
// deterministic fallbacks.
func (s *chatService) PostMessage(ctx context.Context, conversationID int64, content string) (*storage.Message, *storage.Message, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if content == "" {
		return nil, nil, &ValidationError{Field: "content", Message: "cannot be empty"}
	}

	if _, err := s.convs.GetByID(ctx, conversationID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, WrapError(err, "failed to get conversation")
	}

	userMsg := &storage.Message{
		ConversationID: conversationID,
		Sender:         storage.SenderUser,
		Content:        content,
	}
	if err := s.msgs.Create(ctx, userMsg); err != nil {
		return nil, nil, WrapError(err, "failed to persist user message")
	}
	logger.DebugContext(ctx, "user message saved", "conversation_id", conversationID, "message_id", userMsg.ID)

	bots, err := s.bots.ListAll(ctx)
	if err != nil {
		return nil, nil, WrapError(err, "failed to list bots")
	}
	if len(bots) == 0 {
		return nil, nil, fmt.Errorf("no bots configured")
	}

	targetName := s.router.Route(ctx, content, bots)

	targetBot, err := s.bots.GetByName(ctx, targetName)
	if errors.Is(err, storage.ErrNotFound) {
		// Routed bot vanished between listing and lookup; fall back to the
		// first bot of the routing list
		logger.WarnContext(ctx, "routed bot not found, using first bot", "routed", targetName, "fallback", bots[0].Name)
		targetBot = &bots[0]
	} else if err != nil {
		return nil, nil, WrapError(err, "failed to resolve routed bot")
	}

	// History is the full ordered message list minus its last element, which
	// is the message persisted above
	all, err := s.msgs.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, nil, WrapError(err, "failed to load history")
	}
	history := all[:len(all)-1]

	reply := s.responder.Respond(ctx, *targetBot, history, content)

	botMsg := &storage.Message{
		ConversationID: conversationID,
		Sender:         targetBot.Name,
		Content:        reply,
	}
	if err := s.msgs.Create(ctx, botMsg); err != nil {
		return nil, nil, WrapError(err, "failed to persist bot message")
	}
	logger.InfoContext(ctx, "bot reply saved", "conversation_id", conversationID, "bot", targetBot.Name, "message_id", botMsg.ID)

	return userMsg, botMsg, nil
}

// ListBots returns all configured bots in creation order.
func (s *chatService) ListBots(ctx context.Context) ([]storage.Bot, error) {
	bots, err := s.bots.ListAll(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to list bots")
	}
	return bots, nil
}

// CreateBot creates a new bot persona. An empty model falls back to the
// configured default model.
func (s *chatService) CreateBot(ctx context.Context, name, role, systemPrompt, model string) (*storage.Bot, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if role == "" {
		return nil, &ValidationError{Field: "role", Message: "cannot be empty"}
	}
	if systemPrompt == "" {
		return nil, &ValidationError{Field: "system_prompt", Message: "cannot be empty"}
	}
	if model == "" {
		model = s.defaultModel
	}

	bot := &storage.Bot{Name: name, Role: role, SystemPrompt: systemPrompt, Model: model}
	err := s.bots.Create(ctx, bot)
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, &ValidationError{Field: "name", Message: "already exists"}
	}
	if err != nil {
		return nil, WrapError(err, "failed to create bot")
	}

	logger.InfoContext(ctx, "bot created", "id", bot.ID, "name", bot.Name, "model", bot.Model)
	return bot, nil
}

// UpdateBotModel changes a bot's backing model. The model is the only
// mutable bot field post-creation.
func (s *chatService) UpdateBotModel(ctx context.Context, id int64, model string) (*storage.Bot, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if model == "" {
		// Keep the current model when the form omits one
		bot, err := s.bots.GetByID(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, WrapError(err, "failed to get bot")
		}
		return bot, nil
	}

	err := s.bots.UpdateModel(ctx, id, model)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, WrapError(err, "failed to update bot model")
	}

	bot, err := s.bots.GetByID(ctx, id)
	if err != nil {
		return nil, WrapError(err, "failed to reload bot")
	}
	logger.InfoContext(ctx, "bot model updated", "id", id, "model", bot.Model)
	return bot, nil
}
