package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"NewsSentiment/internal/config"
	"NewsSentiment/internal/textutil"
)

func TestChunkRespectsLimit(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("Acme shares rose after strong results. ", 12) +
		strings.Repeat("x", 450) + " तिमाही में मुनाफा बढ़ा।"
	chunks := Chunk(text, MaxChunkRunes)
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := textutil.Len(c); n == 0 || n > MaxChunkRunes {
			t.Fatalf("chunk %d has %d runes", i, n)
		}
	}
	joined := strings.Join(chunks, " ")
	if strings.Count(joined, "Acme") != 12 || strings.Count(joined, "x") != 450 || !strings.Contains(joined, "मुनाफा") {
		t.Fatalf("chunks lost text")
	}
	if Chunk("   ", MaxChunkRunes) != nil {
		t.Fatalf("blank text should give no chunks")
	}
}

func TestRenderFallsBackToNextEndpoint(t *testing.T) {
	t.Parallel()

	var served atomic.Int32
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()
	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tl") != "hi" || r.URL.Query().Get("q") == "" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		served.Add(1)
		_, _ = w.Write([]byte("mp3"))
	}))
	defer working.Close()

	dir := t.TempDir()
	tts := NewTTS(config.SpeechConfig{
		Endpoints: []string{broken.URL, working.URL},
		OutputDir: filepath.Join(dir, "audio"),
	}, nil)

	text := strings.Repeat("Coverage of Acme was mostly positive. ", 8)
	path, err := tts.Render(context.Background(), "Acme Corp", text)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if filepath.Base(path) != "acme-corp.mp3" {
		t.Fatalf("unexpected path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	chunks := len(Chunk(text, MaxChunkRunes))
	if int(served.Load()) != chunks || string(data) != strings.Repeat("mp3", chunks) {
		t.Fatalf("expected %d chunks concatenated, got %q", chunks, data)
	}
}

func TestRenderAllEndpointsFail(t *testing.T) {
	t.Parallel()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer broken.Close()

	tts := NewTTS(config.SpeechConfig{Endpoints: []string{broken.URL}, OutputDir: t.TempDir()}, nil)
	if _, err := tts.Render(context.Background(), "Acme", "Some narrative."); err == nil {
		t.Fatalf("expected error when every endpoint fails")
	}
	if _, err := tts.Render(context.Background(), "Acme", " "); err == nil {
		t.Fatalf("expected error for empty narrative")
	}
}
