package extract

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"pdf raw", "D:20230315093045Z", "2023-03-15 09:30:45"},
		{"pdf raw with offset", "D:20230315093045+06'00'", "2023-03-15 09:30:45"},
		{"iso with zone", "2023-03-15T09:30:45Z", "2023-03-15 09:30:45"},
		{"iso without zone", "2023-03-15T09:30:45", "2023-03-15 09:30:45"},
		{"already normalized", "2023-03-15 09:30:45", "2023-03-15 09:30:45"},
		{"date only", "2023-03-15", "2023-03-15 00:00:00"},
		{"garbage", "hace dos semanas", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDate(tt.input); got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/docs/contrato_arrendamiento.pdf", "contrato_arrendamiento"},
		{"demanda.v2.docx", "demanda.v2"},
		{"sin_extension", "sin_extension"},
		{"/docs/.oculto", ".oculto"},
	}
	for _, tt := range tests {
		if got := TitleFromFilename(tt.path); got != tt.want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestExtractFallsBackToFilesystem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acta_constitutiva.pdf")
	// Not a real PDF; the parser fails and filesystem fallbacks apply.
	// Big enough that the size survives rounding to two decimals.
	if err := os.WriteFile(path, []byte(strings.Repeat("not a pdf ", 8192)), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewMetadataExtractor(slog.New(slog.NewTextHandler(&strings.Builder{}, nil)))
	meta, err := m.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if meta.Title != "acta_constitutiva" {
		t.Errorf("title = %q, want filename fallback", meta.Title)
	}
	if meta.Created == "" || meta.Modified == "" {
		t.Error("expected filesystem timestamps as fallback")
	}
	if meta.SizeMB <= 0 {
		t.Errorf("size = %v, want > 0", meta.SizeMB)
	}
}

func TestExtractUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notas.txt")
	if err := os.WriteFile(path, []byte("texto"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewMetadataExtractor(slog.New(slog.NewTextHandler(&strings.Builder{}, nil)))
	if _, err := m.Extract(path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
