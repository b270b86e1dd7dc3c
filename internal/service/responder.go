package service

import (
	"context"
	"log/slog"

	"multichat/internal/contextutil"
	"multichat/internal/llm"
	"multichat/internal/storage"
)

// apologyReply is returned whenever reply generation fails.
const apologyReply = "I apologize, but I encountered an error while processing your request."

// Responder generates a bot's reply given its persona and conversation history.
type Responder struct {
	llm    LLMClient
	logger *slog.Logger
}

// NewResponder creates a new Responder.
func NewResponder(client LLMClient) *Responder {
	return &Responder{
		llm:    client,
		logger: slog.Default(),
	}
}

// buildTurns constructs the turn sequence for a reply: the bot's system
// prompt, one turn per history entry, then the new user message. Every
// non-user sender maps to the assistant role, so the responding bot sees
// the whole multi-bot conversation as if it produced all prior bot turns.
func buildTurns(bot storage.Bot, history []storage.Message, newMessage string) []llm.Message {
	turns := make([]llm.Message, 0, len(history)+2)
	turns = append(turns, llm.Message{Role: llm.RoleSystem, Content: bot.SystemPrompt})

	for _, msg := range history {
		role := llm.RoleAssistant
		if msg.Sender == storage.SenderUser {
			role = llm.RoleUser
		}
		turns = append(turns, llm.Message{Role: role, Content: msg.Content})
	}

	turns = append(turns, llm.Message{Role: llm.RoleUser, Content: newMessage})
	return turns
}

// Respond returns the bot's reply to newMessage. history holds the prior
// conversation excluding the newest user message. The call uses the bot's
// configured model and never fails: any LLM error yields a fixed apology.
func (r *Responder) Respond(ctx context.Context, bot storage.Bot, history []storage.Message, newMessage string) string {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "generating bot response", "bot", bot.Name, "model", bot.Model, "history_len", len(history))

	reply, err := r.llm.Chat(ctx, bot.Model, buildTurns(bot, history, newMessage))
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate bot response", "bot", bot.Name, "error", err)
		return apologyReply
	}

	logger.DebugContext(ctx, "bot response generated", "bot", bot.Name, "reply_length", len(reply))
	return reply
}
