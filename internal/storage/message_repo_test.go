package storage

import (
	"context"
	"testing"
	"time"
)

func TestMessageRepo_Create(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	conv, err := s.convs.Create(ctx, "chat")
	if err != nil {
		t.Fatalf("Create conversation error = %v", err)
	}

	msg := &Message{ConversationID: conv.ID, Sender: SenderUser, Content: "hello"}
	if err := s.msgs.Create(ctx, msg); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if msg.ID == 0 {
		t.Error("Create() should fill in the generated id")
	}
	if msg.Timestamp.IsZero() {
		t.Error("Create() should fill in the timestamp")
	}
	if time.Since(msg.Timestamp) > time.Minute {
		t.Error("Timestamp should be recent")
	}
}

func TestMessageRepo_Create_MissingConversation(t *testing.T) {
	s := newTestDB(t)

	msg := &Message{ConversationID: 999, Sender: SenderUser, Content: "orphan"}
	if err := s.msgs.Create(context.Background(), msg); err != ErrNotFound {
		t.Errorf("Create() error = %v, want ErrNotFound", err)
	}
}

func TestMessageRepo_ListByConversation_Order(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	conv, err := s.convs.Create(ctx, "chat")
	if err != nil {
		t.Fatalf("Create conversation error = %v", err)
	}
	other, err := s.convs.Create(ctx, "other")
	if err != nil {
		t.Fatalf("Create conversation error = %v", err)
	}

	contents := []string{"first", "second", "third"}
	for _, content := range contents {
		msg := &Message{ConversationID: conv.ID, Sender: SenderUser, Content: content}
		if err := s.msgs.Create(ctx, msg); err != nil {
			t.Fatalf("Create message error = %v", err)
		}
	}
	noise := &Message{ConversationID: other.ID, Sender: "CodeBot", Content: "elsewhere"}
	if err := s.msgs.Create(ctx, noise); err != nil {
		t.Fatalf("Create message error = %v", err)
	}

	msgs, err := s.msgs.ListByConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListByConversation() error = %v", err)
	}
	if len(msgs) != len(contents) {
		t.Fatalf("ListByConversation() count = %d, want %d", len(msgs), len(contents))
	}
	// Insertion order must be preserved even when timestamps tie,
	// since id breaks the tie
	for i, content := range contents {
		if msgs[i].Content != content {
			t.Errorf("ListByConversation()[%d] = %s, want %s", i, msgs[i].Content, content)
		}
	}
}

func TestMessageRepo_ListByConversation_Empty(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	conv, err := s.convs.Create(ctx, "empty")
	if err != nil {
		t.Fatalf("Create conversation error = %v", err)
	}

	msgs, err := s.msgs.ListByConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListByConversation() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("ListByConversation() count = %d, want 0", len(msgs))
	}
}
