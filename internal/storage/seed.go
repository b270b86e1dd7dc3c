package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// defaultBots is the minimum viable bot set created on first startup.
var defaultBots = []Bot{
	{
		Name:         "EmailBot",
		Role:         "Email Assistant",
		SystemPrompt: "You are an expert at writing professional emails. Help the user draft, edit, or reply to emails.",
	},
	{
		Name:         "CodeBot",
		Role:         "Coding Assistant",
		SystemPrompt: "You are an expert software developer. Help the user write, debug, and explain code.",
	},
	{
		Name:         "AccountingBot",
		Role:         "Accountant",
		SystemPrompt: "You are an accountant. Help the user with financial questions, bookkeeping, and taxes.",
	},
	{
		Name:         "JokeBot",
		Role:         "Comedian",
		SystemPrompt: "You are a comedian. Respond to everything with a joke or a funny observation.",
	},
}

// SeedDefaultBots creates the default bots if no bots exist yet.
// It is a no-op when at least one bot is already configured.
func SeedDefaultBots(ctx context.Context, bots BotStore, defaultModel string) error {
	n, err := bots.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count bots: %w", err)
	}
	if n > 0 {
		slog.Debug("Bots already exist, skipping seed", "count", n)
		return nil
	}

	slog.Info("No bots found, seeding default bots")
	for _, bot := range defaultBots {
		bot.Model = defaultModel
		if err := bots.Create(ctx, &bot); err != nil {
			return fmt.Errorf("failed to seed bot %s: %w", bot.Name, err)
		}
		slog.Debug("Seeded bot", "name", bot.Name)
	}
	slog.Info("Seeded default bots", "count", len(defaultBots))
	return nil
}
