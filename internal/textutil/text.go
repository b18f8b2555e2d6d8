// Package textutil holds small rune-aware helpers shared by the normalizer,
// the classifier adapter and the summary composer.
package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CollapseSpaces trims s and replaces every whitespace run with one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Len counts runes, not bytes.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// IsTerminal reports whether r closes a sentence.
func IsTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Sentences splits text at '.', '!' or '?' followed by whitespace or the end
// of input. A trailing fragment without terminal punctuation is returned as
// the last element.
func Sentences(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	var (
		out   []string
		start int
	)
	for i, r := range runes {
		if !IsTerminal(r) {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CutAtWord shortens s to at most n runes, preferring the last word boundary.
func CutAtWord(s string, n int) string {
	cut := Truncate(s, n)
	if cut == s {
		return s
	}
	if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
