package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"NewsSentiment/internal/config"
	"NewsSentiment/internal/ports"
	"NewsSentiment/internal/textutil"
)

// MaxChunkRunes is the longest text a translate-TTS endpoint accepts per request.
const MaxChunkRunes = 200

// TTS renders narratives to MP3 through Google-translate-compatible
// endpoints. Endpoints are tried in order until one renders every chunk.
type TTS struct {
	endpoints []string
	language  string
	outputDir string
	http      *http.Client
	logger    *slog.Logger
}

var _ ports.SpeechSink = (*TTS)(nil)

// NewTTS builds the sink from configuration.
func NewTTS(cfg config.SpeechConfig, logger *slog.Logger) *TTS {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	language := cfg.Language
	if language == "" {
		language = "hi"
	}
	return &TTS{
		endpoints: cfg.Endpoints,
		language:  language,
		outputDir: cfg.OutputDir,
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (t *TTS) WithHTTPClient(client *http.Client) *TTS {
	t.http = client
	return t
}

// Render synthesizes text and writes <outputDir>/<name>.mp3.
func (t *TTS) Render(ctx context.Context, name, text string) (string, error) {
	chunks := Chunk(text, MaxChunkRunes)
	if len(chunks) == 0 {
		return "", errors.New("nothing to speak")
	}
	if len(t.endpoints) == 0 {
		return "", errors.New("no speech endpoints configured")
	}

	var failures []error
	for _, endpoint := range t.endpoints {
		audio, err := t.synthesize(ctx, endpoint, chunks)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			t.logger.Warn("speech endpoint failed", "endpoint", endpoint, "error", err)
			failures = append(failures, err)
			continue
		}
		return t.write(name, audio)
	}
	return "", fmt.Errorf("all speech endpoints failed: %w", errors.Join(failures...))
}

func (t *TTS) synthesize(ctx context.Context, endpoint string, chunks []string) ([]byte, error) {
	var audio bytes.Buffer
	for i, chunk := range chunks {
		query := url.Values{}
		query.Set("ie", "UTF-8")
		query.Set("client", "tw-ob")
		query.Set("tl", t.language)
		query.Set("q", chunk)
		query.Set("idx", fmt.Sprint(i))
		query.Set("total", fmt.Sprint(len(chunks)))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")

		resp, err := t.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request chunk %d: %w", i, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("chunk %d: unexpected status %s", i, resp.Status)
		}
		_, err = io.Copy(&audio, resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read chunk %d: %w", i, err)
		}
	}
	return audio.Bytes(), nil
}

func (t *TTS) write(name string, audio []byte) (string, error) {
	dir := t.outputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, fileName(name)+".mp3")
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	return path, nil
}

// Chunk splits text into pieces of at most limit runes, breaking at sentence
// ends when possible and at spaces otherwise.
func Chunk(text string, limit int) []string {
	var chunks []string
	var current string
	flush := func() {
		if c := strings.TrimSpace(current); c != "" {
			chunks = append(chunks, c)
		}
		current = ""
	}

	for _, sentence := range textutil.Sentences(text) {
		for _, word := range strings.Fields(sentence) {
			for textutil.Len(word) > limit {
				flush()
				head := textutil.Truncate(word, limit)
				chunks = append(chunks, head)
				word = word[len(head):]
			}
			if current != "" && textutil.Len(current)+1+textutil.Len(word) > limit {
				flush()
			}
			if current == "" {
				current = word
			} else {
				current += " " + word
			}
		}
		if textutil.Len(current) > limit/2 {
			flush()
		}
	}
	flush()
	return chunks
}

func fileName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '-'
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "-")
	if name == "" {
		return "narrative"
	}
	return name
}
