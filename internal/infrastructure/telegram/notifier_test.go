package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"MarketSync/internal/config"
)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	notifier := NewNotifier(config.TelegramConfig{BotToken: "bot-1", ChatID: "chat-1"})
	notifier.baseURL = server.URL
	notifier.client = server.Client()

	if err := notifier.PublishDigest(context.Background(), "sync done"); err != nil {
		t.Fatalf("PublishDigest returned error: %v", err)
	}

	if gotPath != "/botbot-1/sendMessage" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotChat != "chat-1" || gotText != "sync done" {
		t.Fatalf("unexpected form values: chat=%s text=%s", gotChat, gotText)
	}
}

func TestPublishDigestMisconfigured(t *testing.T) {
	t.Parallel()

	notifier := NewNotifier(config.TelegramConfig{})
	if err := notifier.PublishDigest(context.Background(), "x"); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestPublishDigestErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	notifier := NewNotifier(config.TelegramConfig{BotToken: "bot-1", ChatID: "chat-1"})
	notifier.baseURL = server.URL
	notifier.client = server.Client()

	if err := notifier.PublishDigest(context.Background(), "x"); err == nil {
		t.Fatal("expected error for 400 response")
	}
}
