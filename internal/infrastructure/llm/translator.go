package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"NewsSentiment/internal/ports"
)

var languageNames = map[string]string{
	"hi": "Hindi",
	"en": "English",
	"bn": "Bengali",
	"ta": "Tamil",
	"te": "Telugu",
	"mr": "Marathi",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
}

// Translator renders narratives into another language with a chat model.
type Translator struct {
	client *Client
}

var _ ports.Translator = (*Translator)(nil)

// NewTranslator builds the translator over a prepared client.
func NewTranslator(client *Client) *Translator {
	return &Translator{client: client}
}

// Translate returns text in the language given by its ISO 639-1 code.
func (t *Translator) Translate(ctx context.Context, text, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	name := languageName(language)
	system := fmt.Sprintf("Translate the user's text into %s. Keep company names unchanged. Reply with the translation only.", name)

	out, err := t.client.Complete(ctx, system, text)
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", name, err)
	}
	if out == "" {
		return "", errors.New("empty translation")
	}
	return out, nil
}

func languageName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}
