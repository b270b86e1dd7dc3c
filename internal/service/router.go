package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks multichat/internal/service LLMClient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"multichat/internal/contextutil"
	"multichat/internal/llm"
	"multichat/internal/storage"
)

// LLMClient is an interface for interacting with an LLM API.
// This interface is defined from the service layer's perspective (consumer-first).
type LLMClient interface {
	// Chat sends role-tagged messages to the LLM and returns the completion.
	// An empty model falls back to the client's default model.
	Chat(ctx context.Context, model string, messages []llm.Message) (string, error)
}

// Router selects which bot should answer a given user message.
type Router struct {
	llm          LLMClient
	defaultModel string
	logger       *slog.Logger
}

// NewRouter creates a new Router. Routing calls always use defaultModel,
// never a specific bot's configured model.
func NewRouter(client LLMClient, defaultModel string) *Router {
	return &Router{
		llm:          client,
		defaultModel: defaultModel,
		logger:       slog.Default(),
	}
}

// routingPrompt builds the system instruction listing every bot's name and role.
func routingPrompt(bots []storage.Bot) string {
	var descriptions strings.Builder
	for i, bot := range bots {
		if i > 0 {
			descriptions.WriteString("\n")
		}
		fmt.Fprintf(&descriptions, "- %s: %s", bot.Name, bot.Role)
	}

	return "You are a RouterBot. Your job is to analyze the user's message and decide which bot should respond.\n" +
		"Available bots:\n" +
		descriptions.String() + "\n" +
		"Return ONLY the name of the bot that is best suited to handle the message. " +
		"If no specific bot is suitable, default to 'JokeBot' or the most general one. " +
		"Do not output any other text, just the bot name."
}

// Route returns the name of the bot that should handle the message.
// It never fails: when the model's answer matches no configured bot, or the
// LLM call errors, the first bot in the list is returned. bots must be
// non-empty.
func (r *Router) Route(ctx context.Context, message string, bots []storage.Bot) string {
	logger := contextutil.LoggerFromContext(ctx)

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: routingPrompt(bots)},
		{Role: llm.RoleUser, Content: message},
	}

	response, err := r.llm.Chat(ctx, r.defaultModel, messages)
	if err != nil {
		logger.ErrorContext(ctx, "routing call failed, using first bot", "error", err, "fallback", bots[0].Name)
		return bots[0].Name
	}

	suggested := strings.TrimSpace(response)
	for _, bot := range bots {
		if strings.EqualFold(bot.Name, suggested) {
			logger.InfoContext(ctx, "routed message", "bot", bot.Name)
			return bot.Name
		}
	}

	logger.WarnContext(ctx, "suggested bot not configured, using first bot",
		"suggested", suggested, "fallback", bots[0].Name)
	return bots[0].Name
}
