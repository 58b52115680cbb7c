package spellcheck

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func testDict() *WordlistDictionary {
	return NewWordlistDictionary([]string{
		"contrato", "demanda", "sentencia", "tribunal", "firmado",
		"arrendamiento", "arrendatario", "propiedad", "inmueble",
	})
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCheckerFindsMisspellings(t *testing.T) {
	c := NewChecker(testDict(), 5, testLogger())

	got := c.Check("el contrato de arendamiento fue firmado por el tribunal")
	want := []string{"arendamiento"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Check = %v, want %v", got, want)
	}
}

func TestCheckerSkipsNoise(t *testing.T) {
	c := NewChecker(testDict(), 5, testLogger())

	tests := []struct {
		name string
		text string
	}{
		{"stopwords only", "el la de los en por para"},
		{"numbers", "123 45.6 2023"},
		{"mixed tokens", "exp-2023 a 1o"},
		{"punctuation", "... , ; ( )"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Check(tt.text); len(got) != 0 {
				t.Errorf("Check(%q) = %v, want none", tt.text, got)
			}
		})
	}
}

func TestCheckerDeduplicates(t *testing.T) {
	c := NewChecker(testDict(), 5, testLogger())

	got := c.Check("sentenzia y otra sentenzia y Sentenzia")
	if len(got) != 1 {
		t.Errorf("Check = %v, want single distinct misspelling", got)
	}
}

func TestCheckerIdempotent(t *testing.T) {
	c := NewChecker(testDict(), 5, testLogger())
	text := "el contracto del inmueble"

	first := c.Check(text)
	second := c.Check(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated checks differ: %v vs %v", first, second)
	}
}

func TestSuggestions(t *testing.T) {
	c := NewChecker(testDict(), 5, testLogger())

	got := c.Suggestions("contrat")
	if len(got) == 0 || got[0] != "contrato" {
		t.Errorf("Suggestions(contrat) = %v, want contrato first", got)
	}

	// Strips punctuation and lowercases before lookup.
	if got := c.Suggestions("Contrat."); len(got) == 0 || got[0] != "contrato" {
		t.Errorf("Suggestions(Contrat.) = %v, want contrato first", got)
	}

	if got := c.Suggestions("zzzzzzzzzz"); len(got) != 0 {
		t.Errorf("Suggestions for distant word = %v, want none", got)
	}
}

func TestSuggestionsCached(t *testing.T) {
	c := NewChecker(testDict(), 5, testLogger())

	first := c.Suggestions("demandda")
	second := c.Suggestions("demandda")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached suggestions differ: %v vs %v", first, second)
	}
}

func TestLoadWordlist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "es.txt")
	content := "contrato\n# comentario\n\nDemanda\n  tribunal  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadWordlist(path)
	if err != nil {
		t.Fatalf("LoadWordlist: %v", err)
	}
	if d.Len() != 3 {
		t.Errorf("Len = %d, want 3", d.Len())
	}
	for _, w := range []string{"contrato", "demanda", "DEMANDA", "tribunal"} {
		if !d.IsCorrect(w) {
			t.Errorf("IsCorrect(%q) = false, want true", w)
		}
	}
	if d.IsCorrect("sentencia") {
		t.Error("IsCorrect matched a word not in the list")
	}
}
