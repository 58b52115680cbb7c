package ner

import (
	"strings"
	"testing"
)

func TestTokenizeOffsets(t *testing.T) {
	text := "el  contrato firmado"
	tokens := tokenize(text)
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	for _, tok := range tokens {
		if text[tok.Start:tok.End] != tok.Text {
			t.Errorf("token %q offsets [%d,%d) do not slice back to itself", tok.Text, tok.Start, tok.End)
		}
	}
}

func TestChunkTokensCoversText(t *testing.T) {
	words := make([]string, 1000)
	for i := range words {
		words[i] = "palabra"
	}
	text := strings.Join(words, " ")

	chunks := chunkTokens(text, 450, 50)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// Every chunk offset must slice cleanly into the original text.
	for i, ch := range chunks {
		if ch.Offset < 0 || ch.Offset+len(ch.Text) > len(text) {
			t.Fatalf("chunk %d out of range: offset=%d len=%d", i, ch.Offset, len(ch.Text))
		}
		if text[ch.Offset:ch.Offset+len(ch.Text)] != ch.Text {
			t.Errorf("chunk %d does not match its offset", i)
		}
	}
	// The last chunk must reach the end of the text.
	last := chunks[len(chunks)-1]
	if last.Offset+len(last.Text) != len(text) {
		t.Error("chunks do not cover the tail of the text")
	}
}

func TestChunkTokensShortText(t *testing.T) {
	chunks := chunkTokens("solo tres palabras", 450, 50)
	if len(chunks) != 1 {
		t.Fatalf("expected a single chunk, got %d", len(chunks))
	}
	if chunks[0].Offset != 0 {
		t.Errorf("offset = %d, want 0", chunks[0].Offset)
	}
}

func TestContextWindow(t *testing.T) {
	text := "uno dos tres cuatro cinco seis siete"
	tokens := tokenize(text)

	// Window around "cuatro" (bytes 13..19) with one token either side.
	got := contextWindow(text, tokens, 13, 19, 1)
	if !strings.Contains(got, "tres") || !strings.Contains(got, "cinco") {
		t.Errorf("contextWindow = %q, want neighbors included", got)
	}
	if strings.Contains(got, "uno") || strings.Contains(got, "siete") {
		t.Errorf("contextWindow = %q, window too wide", got)
	}
}
