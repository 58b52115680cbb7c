package ner

import (
	"context"
	"strings"
)

// PatternPredictor extracts the deterministic entity classes directly from
// the pattern tables: statute references, document codes, curated keywords
// and role-qualified names. Its spans carry full confidence so overlap
// resolution prefers them over model guesses.
type PatternPredictor struct {
	vocab *Vocabulary
}

func NewPatternPredictor(vocab *Vocabulary) *PatternPredictor {
	if vocab == nil {
		vocab = MustDefaultVocabulary()
	}
	return &PatternPredictor{vocab: vocab}
}

func (p *PatternPredictor) Name() string { return "patterns" }

func (p *PatternPredictor) Predict(_ context.Context, text string) ([]RawSpan, error) {
	var spans []RawSpan

	for _, re := range p.vocab.refPatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, rawSpanAt(text, "LEGAL_REF", loc))
		}
	}
	for _, re := range p.vocab.codePatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, rawSpanAt(text, "LEGAL_DOC", loc))
		}
	}
	for _, kw := range p.vocab.keywords {
		for _, loc := range kw.re.FindAllStringIndex(text, -1) {
			// The boundary groups are part of the match; shrink to the word.
			start := loc[0] + strings.Index(strings.ToLower(text[loc[0]:loc[1]]), kw.keyword)
			if start < loc[0] {
				continue
			}
			spans = append(spans, rawSpanAt(text, "KEYWORD", []int{start, start + len(kw.keyword)}))
		}
	}
	if p.vocab.roleName != nil {
		for _, loc := range p.vocab.roleName.FindAllStringIndex(text, -1) {
			spans = append(spans, rawSpanAt(text, "PERSON_W_ROLE", loc))
		}
	}
	return dedupeSpans(spans), nil
}

func rawSpanAt(text, label string, loc []int) RawSpan {
	return RawSpan{
		Label:      label,
		Text:       strings.TrimSpace(text[loc[0]:loc[1]]),
		Start:      loc[0],
		End:        loc[1],
		Confidence: 1.0,
	}
}
