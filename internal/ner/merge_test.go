package ner

import "testing"

func TestMergeAdjacentPersons(t *testing.T) {
	text := "Juan Pérez firmó el contrato"
	spans := []RawSpan{
		{Label: "PER", Text: "Juan", Start: 0, End: 4, Confidence: 0.9},
		{Label: "PER", Text: "Pérez", Start: 5, End: 11, Confidence: 0.7},
	}

	got := mergeAdjacent(text, spans)
	if len(got) != 1 {
		t.Fatalf("expected 1 merged span, got %d", len(got))
	}
	if got[0].Text != "Juan Pérez" {
		t.Errorf("merged text = %q, want %q", got[0].Text, "Juan Pérez")
	}
	if got[0].Start != 0 || got[0].End != 11 {
		t.Errorf("merged offsets = [%d,%d), want [0,11)", got[0].Start, got[0].End)
	}
	if got[0].Confidence < 0.79 || got[0].Confidence > 0.81 {
		t.Errorf("merged confidence = %v, want average 0.8", got[0].Confidence)
	}
}

func TestMergeAdjacentRejections(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		spans []RawSpan
	}{
		{
			name: "punctuation in gap",
			text: "Juan, Pérez",
			spans: []RawSpan{
				{Label: "PER", Text: "Juan", Start: 0, End: 4},
				{Label: "PER", Text: "Pérez", Start: 6, End: 12},
			},
		},
		{
			name: "lowercase continuation",
			text: "Juan el testigo",
			spans: []RawSpan{
				{Label: "PER", Text: "Juan", Start: 0, End: 4},
				{Label: "PER", Text: "el", Start: 5, End: 7},
			},
		},
		{
			name: "gap too wide",
			text: "Juan y la Sra Pérez",
			spans: []RawSpan{
				{Label: "PER", Text: "Juan", Start: 0, End: 4},
				{Label: "PER", Text: "Pérez", Start: 14, End: 20},
			},
		},
		{
			name: "different categories",
			text: "Oaxaca Juan",
			spans: []RawSpan{
				{Label: "LOC", Text: "Oaxaca", Start: 0, End: 6},
				{Label: "PER", Text: "Juan", Start: 7, End: 11},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mergeAdjacent(tt.text, tt.spans); len(got) != 2 {
				t.Errorf("expected spans to stay separate, got %d", len(got))
			}
		})
	}
}

func TestMergeAdjacentLocations(t *testing.T) {
	text := "en San Luis Potosí"
	spans := []RawSpan{
		{Label: "LOC", Text: "San Luis", Start: 3, End: 11},
		{Label: "GPE", Text: "Potosí", Start: 12, End: 19},
	}
	got := mergeAdjacent(text, spans)
	if len(got) != 1 {
		t.Fatalf("expected 1 merged span, got %d", len(got))
	}
	if got[0].Text != "San Luis Potosí" {
		t.Errorf("merged text = %q", got[0].Text)
	}
}

func TestMergePersonRuns(t *testing.T) {
	text := "ante María J Gómez"
	tokens := tokenize(text)
	spans := []RawSpan{
		{Label: "PER", Text: "María", Start: 5, End: 11, Confidence: 0.9},
		{Label: "PER", Text: "Gómez", Start: 14, End: 20, Confidence: 0.8},
	}
	// A middle initial separates the spans: one token, three characters.
	// The wider person pass should still join them.
	got := mergePersonRuns(text, tokens, spans)
	if len(got) != 1 {
		t.Fatalf("expected 1 merged span, got %d: %+v", len(got), got)
	}
	if got[0].End != 20 {
		t.Errorf("merged end = %d, want 20", got[0].End)
	}
	if got[0].Text != "María J Gómez" {
		t.Errorf("merged text = %q", got[0].Text)
	}
}

func TestResolveOverlaps(t *testing.T) {
	spans := []RawSpan{
		{Label: "DATE", Text: "123", Start: 5, End: 8, Confidence: 0.6},
		{Label: "LEGAL_REF", Text: "Art. 123", Start: 0, End: 8, Confidence: 1.0},
		{Label: "PER", Text: "Juan", Start: 20, End: 24, Confidence: 0.9},
	}
	got := resolveOverlaps(spans)
	if len(got) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(got), got)
	}
	if got[0].Label != "LEGAL_REF" {
		t.Errorf("first span = %q, want statute reference to win", got[0].Label)
	}
	if got[1].Label != "PER" {
		t.Errorf("second span = %q, want person kept", got[1].Label)
	}
}

func TestResolveOverlapsKeepsContainedHigherPriority(t *testing.T) {
	// The longer span must not win on length alone when the contained
	// span carries the higher-value category: the person survives even
	// though a longer date prediction covers it.
	spans := []RawSpan{
		{Label: "DATE", Text: "Juan Pérez el quince de", Start: 0, End: 24, Confidence: 0.5},
		{Label: "PER", Text: "Juan Pérez", Start: 0, End: 11, Confidence: 0.9},
	}
	got := resolveOverlaps(spans)
	if got[0].Label != "PER" {
		t.Fatalf("first span = %q, want the person ranked above the date: %+v", got[0].Label, got)
	}
	for _, s := range got {
		if s.Label == "PER" {
			return
		}
	}
	t.Errorf("person span dropped: %+v", got)
}
