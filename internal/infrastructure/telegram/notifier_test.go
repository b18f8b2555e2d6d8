package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"NewsSentiment/internal/config"
)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	var got struct{ path, chat, text, mode string }
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got.path = r.URL.Path
		got.chat = r.PostForm.Get("chat_id")
		got.text = r.PostForm.Get("text")
		got.mode = r.PostForm.Get("parse_mode")
	}))
	defer srv.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "tok", ChatID: "42", APIURL: srv.URL + "/"})
	if err := n.PublishDigest(context.Background(), "*Acme*\nmostly positive"); err != nil {
		t.Fatalf("PublishDigest error: %v", err)
	}
	if got.path != "/bottok/sendMessage" || got.chat != "42" || got.mode != "Markdown" {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.text != "*Acme*\nmostly positive" {
		t.Fatalf("unexpected text %q", got.text)
	}

	if err := n.PublishDigest(context.Background(), strings.Repeat("я", 5000)); err != nil {
		t.Fatalf("PublishDigest error: %v", err)
	}
	if utf8.RuneCountInString(got.text) != maxMessageRunes {
		t.Fatalf("long digest not truncated: %d runes", utf8.RuneCountInString(got.text))
	}
}

func TestPublishDigestErrors(t *testing.T) {
	t.Parallel()

	if err := NewNotifier(config.TelegramConfig{}).PublishDigest(context.Background(), "x"); err == nil {
		t.Fatalf("expected misconfiguration error")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "tok", ChatID: "42", APIURL: srv.URL})
	if err := n.PublishDigest(context.Background(), "x"); err == nil {
		t.Fatalf("expected API error")
	}
}
