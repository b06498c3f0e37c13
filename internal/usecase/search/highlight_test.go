package search

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestHighlightIn_OffsetsPointIntoOriginalText(t *testing.T) {
	// The uppercase match must be located in the original text, not a
	// lowercased copy.
	text := "Groceries for the İstanbul trip: Milk and bread"
	h, ok := highlightIn("content", text, "milk", contentContext)
	if !ok {
		t.Fatal("no highlight found")
	}
	if got := text[h.StartIndex:h.EndIndex]; got != "Milk" {
		t.Fatalf("text[start:end] = %q, want %q", got, "Milk")
	}
	if !strings.Contains(h.Snippet, markOpen+"Milk"+markClose) {
		t.Errorf("snippet = %q, want marked original casing", h.Snippet)
	}
}

func TestHighlightIn_SnippetRespectsRuneBoundaries(t *testing.T) {
	text := strings.Repeat("ü", 80) + " milk " + strings.Repeat("日", 80)
	h, ok := highlightIn("content", text, "milk", contentContext)
	if !ok {
		t.Fatal("no highlight found")
	}
	if !utf8.ValidString(h.Snippet) {
		t.Fatalf("snippet split a multibyte character: %q", h.Snippet)
	}
	if got := text[h.StartIndex:h.EndIndex]; got != "milk" {
		t.Fatalf("text[start:end] = %q, want %q", got, "milk")
	}
}

func TestHighlightIn_TermAbsent(t *testing.T) {
	if _, ok := highlightIn("title", "Buy bread", "milk", titleContext); ok {
		t.Fatal("unexpected highlight")
	}
}
