package service_test

import (
	"context"
	"errors"
	"testing"

	"multichat/internal/service"
	"multichat/internal/service/mocks"
	"multichat/internal/storage"

	"go.uber.org/mock/gomock"
)

// newTestService wires a ChatService over a real temp SQLite database with
// the four default bots seeded and the LLM mocked out.
func newTestService(t *testing.T, mockLLM *mocks.MockLLMClient) (service.ChatService, *storage.BotRepo, *storage.ConversationRepo, *storage.MessageRepo) {
	t.Helper()

	db, err := storage.New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}

	bots := storage.NewBotRepo(db)
	convs := storage.NewConversationRepo(db)
	msgs := storage.NewMessageRepo(db)

	if err := storage.SeedDefaultBots(context.Background(), bots, "gemma3"); err != nil {
		t.Fatalf("SeedDefaultBots() error = %v", err)
	}

	router := service.NewRouter(mockLLM, "gemma3")
	responder := service.NewResponder(mockLLM)
	svc := service.NewChatService(bots, convs, msgs, router, responder, "gemma3")
	return svc, bots, convs, msgs
}

func TestChatService_PostMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mocks.NewMockLLMClient(ctrl)
	svc, _, _, msgs := newTestService(t, mockLLM)
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "Test")
	if err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}

	// First call routes, second call generates the reply
	gomock.InOrder(
		mockLLM.EXPECT().
			Chat(gomock.Any(), "gemma3", gomock.Any()).
			Return("CodeBot", nil),
		mockLLM.EXPECT().
			Chat(gomock.Any(), "gemma3", gomock.Any()).
			Return("Try a nil check.", nil),
	)

	userMsg, botMsg, err := svc.PostMessage(ctx, conv.ID, "fix this bug")
	if err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}

	if userMsg.Sender != storage.SenderUser || userMsg.Content != "fix this bug" {
		t.Errorf("user message = %+v", userMsg)
	}
	if botMsg.Sender != "CodeBot" {
		t.Errorf("bot message sender = %s, want CodeBot", botMsg.Sender)
	}
	if botMsg.Content != "Try a nil check." {
		t.Errorf("bot message content = %q, want the second completion", botMsg.Content)
	}

	stored, err := msgs.ListByConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListByConversation() error = %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored messages = %d, want 2", len(stored))
	}
	if stored[0].Sender != storage.SenderUser || stored[1].Sender != "CodeBot" {
		t.Errorf("stored order = [%s %s], want user then bot", stored[0].Sender, stored[1].Sender)
	}
}

func TestChatService_PostMessage_LLMDownStillReplies(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mocks.NewMockLLMClient(ctrl)
	svc, _, _, _ := newTestService(t, mockLLM)
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "Test")
	if err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}

	mockLLM.EXPECT().
		Chat(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("endpoint down")).
		Times(2)

	userMsg, botMsg, err := svc.PostMessage(ctx, conv.ID, "hello")
	if err != nil {
		t.Fatalf("PostMessage() error = %v, LLM failures must not surface", err)
	}
	if userMsg == nil || botMsg == nil {
		t.Fatal("PostMessage() must persist both messages even when the LLM is down")
	}
	// Routing falls back to the first seeded bot
	if botMsg.Sender != "EmailBot" {
		t.Errorf("bot sender = %s, want positional fallback EmailBot", botMsg.Sender)
	}
	if botMsg.Content != "I apologize, but I encountered an error while processing your request." {
		t.Errorf("bot content = %q, want the apology string", botMsg.Content)
	}
}

func TestChatService_PostMessage_HistoryExcludesNewMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mocks.NewMockLLMClient(ctrl)
	svc, _, _, _ := newTestService(t, mockLLM)
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "Test")
	if err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}

	// First exchange: no history, so the responder sees 2 turns
	gomock.InOrder(
		mockLLM.EXPECT().Chat(gomock.Any(), gomock.Any(), gomock.Any()).Return("CodeBot", nil),
		mockLLM.EXPECT().Chat(gomock.Any(), gomock.Any(), gomock.Len(2)).Return("first reply", nil),
	)
	if _, _, err := svc.PostMessage(ctx, conv.ID, "first question"); err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}

	// Second exchange: history is now [user, bot], so the responder sees
	// system + 2 history turns + new message = 4 turns
	gomock.InOrder(
		mockLLM.EXPECT().Chat(gomock.Any(), gomock.Any(), gomock.Any()).Return("CodeBot", nil),
		mockLLM.EXPECT().Chat(gomock.Any(), gomock.Any(), gomock.Len(4)).Return("second reply", nil),
	)
	if _, _, err := svc.PostMessage(ctx, conv.ID, "second question"); err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}
}

func TestChatService_PostMessage_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mocks.NewMockLLMClient(ctrl)
	svc, _, _, _ := newTestService(t, mockLLM)
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "Test")
	if err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}

	_, _, err = svc.PostMessage(ctx, conv.ID, "")
	var validationErr *service.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("PostMessage() with empty content error = %v, want ValidationError", err)
	}

	_, _, err = svc.PostMessage(ctx, 9999, "hello")
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("PostMessage() with missing conversation error = %v, want ErrNotFound", err)
	}
}

func TestChatService_DeleteConversation_Cascades(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mocks.NewMockLLMClient(ctrl)
	svc, _, _, msgs := newTestService(t, mockLLM)
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "doomed")
	if err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}

	mockLLM.EXPECT().Chat(gomock.Any(), gomock.Any(), gomock.Any()).Return("JokeBot", nil).AnyTimes()
	if _, _, err := svc.PostMessage(ctx, conv.ID, "hello"); err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}
	if _, _, err := svc.PostMessage(ctx, conv.ID, "more"); err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}

	if err := svc.DeleteConversation(ctx, conv.ID); err != nil {
		t.Fatalf("DeleteConversation() error = %v", err)
	}

	if _, _, err := svc.GetConversation(ctx, conv.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("GetConversation() after delete error = %v, want ErrNotFound", err)
	}
	remaining, err := msgs.ListByConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListByConversation() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("messages after delete = %d, want 0", len(remaining))
	}

	if err := svc.DeleteConversation(ctx, conv.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("DeleteConversation() again error = %v, want ErrNotFound", err)
	}
}

func TestChatService_CreateBot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mocks.NewMockLLMClient(ctrl)
	svc, _, _, _ := newTestService(t, mockLLM)
	ctx := context.Background()

	bot, err := svc.CreateBot(ctx, "WeatherBot", "Meteorologist", "You forecast weather.", "")
	if err != nil {
		t.Fatalf("CreateBot() error = %v", err)
	}
	if bot.Model != "gemma3" {
		t.Errorf("Model = %s, want default gemma3", bot.Model)
	}

	tests := []struct {
		name                           string
		botName, role, prompt, model   string
		wantField                      string
	}{
		{"missing name", "", "r", "p", "m", "name"},
		{"missing role", "NewBot", "", "p", "m", "role"},
		{"missing system prompt", "NewBot", "r", "", "m", "system_prompt"},
		{"duplicate name", "WeatherBot", "r", "p", "m", "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateBot(ctx, tt.botName, tt.role, tt.prompt, tt.model)
			var validationErr *service.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("CreateBot() error = %v, want ValidationError", err)
			}
			if validationErr.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %s, want %s", validationErr.Field, tt.wantField)
			}
		})
	}
}

func TestChatService_UpdateBotModel_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mocks.NewMockLLMClient(ctrl)
	svc, bots, _, _ := newTestService(t, mockLLM)
	ctx := context.Background()

	seeded, err := bots.GetByName(ctx, "CodeBot")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}

	first, err := svc.UpdateBotModel(ctx, seeded.ID, "llama3.1:8b")
	if err != nil {
		t.Fatalf("UpdateBotModel() error = %v", err)
	}
	second, err := svc.UpdateBotModel(ctx, seeded.ID, "llama3.1:8b")
	if err != nil {
		t.Fatalf("UpdateBotModel() second call error = %v", err)
	}
	if first.Model != "llama3.1:8b" || second.Model != "llama3.1:8b" {
		t.Errorf("models = %s, %s, want llama3.1:8b twice", first.Model, second.Model)
	}

	// Empty model keeps the current one
	kept, err := svc.UpdateBotModel(ctx, seeded.ID, "")
	if err != nil {
		t.Fatalf("UpdateBotModel() with empty model error = %v", err)
	}
	if kept.Model != "llama3.1:8b" {
		t.Errorf("Model = %s, want unchanged llama3.1:8b", kept.Model)
	}

	if _, err := svc.UpdateBotModel(ctx, 9999, "gemma3"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("UpdateBotModel() missing bot error = %v, want ErrNotFound", err)
	}
}
