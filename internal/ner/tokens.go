package ner

import (
	"strings"
	"unicode"
)

// token is a whitespace-delimited word with its byte offsets.
type token struct {
	Text  string
	Start int
	End   int
}

func tokenize(text string) []token {
	var toks []token
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				toks = append(toks, token{Text: text[start:i], Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		toks = append(toks, token{Text: text[start:], Start: start, End: len(text)})
	}
	return toks
}

// contextWindow returns the text slice covering the tokens of [start,end)
// widened by n tokens on each side.
func contextWindow(text string, tokens []token, start, end, n int) string {
	if len(tokens) == 0 {
		return text
	}
	lo, hi := 0, len(tokens)-1
	for i, t := range tokens {
		if t.End > start {
			lo = i
			break
		}
	}
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Start < end {
			hi = i
			break
		}
	}
	lo -= n
	if lo < 0 {
		lo = 0
	}
	hi += n
	if hi > len(tokens)-1 {
		hi = len(tokens) - 1
	}
	return text[tokens[lo].Start:tokens[hi].End]
}

func tokenCount(s string) int {
	return len(strings.Fields(s))
}

// chunk is a slice of the input text submitted to a bounded-input backend.
// Offset maps chunk-relative span offsets back to the full text.
type chunk struct {
	Text   string
	Offset int
}

// chunkTokens splits text into overlapping token windows so entities
// spanning a chunk boundary are still captured by at least one chunk.
func chunkTokens(text string, size, overlap int) []chunk {
	toks := tokenize(text)
	if len(toks) == 0 {
		return nil
	}
	if size <= 0 || len(toks) <= size {
		return []chunk{{Text: text, Offset: 0}}
	}
	step := size - overlap
	if step <= 0 {
		step = size
	}

	var chunks []chunk
	for i := 0; i < len(toks); i += step {
		end := i + size
		if end > len(toks) {
			end = len(toks)
		}
		chunks = append(chunks, chunk{
			Text:   text[toks[i].Start:toks[end-1].End],
			Offset: toks[i].Start,
		})
		if end == len(toks) {
			break
		}
	}
	return chunks
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
