package ner

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/legajo/docsync/internal/common"
)

type fakePredictor struct {
	name  string
	spans []RawSpan
	err   error
}

func (f *fakePredictor) Name() string { return f.name }

func (f *fakePredictor) Predict(context.Context, string) ([]RawSpan, error) {
	return f.spans, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPipelineExtract(t *testing.T) {
	text := "El demandante Juan Pérez compareció el 15 de marzo de 2023 ante el Juzgado Tercero de lo Civil en Oaxaca conforme al Art. 123."

	model := &fakePredictor{name: "model", spans: []RawSpan{
		{Label: "PER", Text: "Juan", Start: 14, End: 18, Confidence: 0.95},
		{Label: "PER", Text: "Pérez", Start: 19, End: 25, Confidence: 0.90},
		{Label: "DATE", Text: "15 de marzo de 2023", Start: 41, End: 60, Confidence: 0.85},
		{Label: "ORG", Text: "Juzgado Tercero de lo Civil", Start: 69, End: 96, Confidence: 0.80},
		{Label: "LOC", Text: "Oaxaca", Start: 100, End: 106, Confidence: 0.75},
	}}

	p := NewPipeline([]Predictor{model, NewPatternPredictor(nil)}, nil, testLogger())
	got, err := p.Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(got.Personas) != 1 {
		t.Fatalf("personas = %d, want 1: %+v", len(got.Personas), got.Personas)
	}
	person := got.Personas[0]
	if person.Name != "Juan Pérez" {
		t.Errorf("person name = %q, want Juan Pérez", person.Name)
	}
	if person.Role != "demandante" {
		t.Errorf("person role = %q, want demandante", person.Role)
	}

	if len(got.Fechas) != 1 {
		t.Fatalf("fechas = %d, want 1: %+v", len(got.Fechas), got.Fechas)
	}
	if got.Fechas[0].Fecha != "2023-03-15" || !got.Fechas[0].IsValid {
		t.Errorf("fecha = %+v, want valid 2023-03-15", got.Fechas[0])
	}

	if len(got.Organizaciones) != 1 {
		t.Fatalf("organizaciones = %d, want 1", len(got.Organizaciones))
	}
	if got.Organizaciones[0].Type != "judicial" {
		t.Errorf("org type = %q, want judicial", got.Organizaciones[0].Type)
	}

	if len(got.Ubicaciones) != 1 {
		t.Fatalf("ubicaciones = %d, want 1", len(got.Ubicaciones))
	}
	if got.Ubicaciones[0].Kind != "ciudad" {
		t.Errorf("location kind = %q, want ciudad", got.Ubicaciones[0].Kind)
	}

	if len(got.ReferenciasLegales) != 1 {
		t.Fatalf("referencias legales = %d, want 1: %+v", len(got.ReferenciasLegales), got.ReferenciasLegales)
	}
	if got.ReferenciasLegales[0].Articulo != "123" {
		t.Errorf("articulo = %q, want 123", got.ReferenciasLegales[0].Articulo)
	}
}

func TestPipelineToleratesFailingBackend(t *testing.T) {
	broken := &fakePredictor{name: "down", err: errors.New("connection refused")}
	working := &fakePredictor{name: "up", spans: []RawSpan{
		{Label: "PER", Text: "Ana López", Start: 0, End: 10, Confidence: 0.9},
	}}

	p := NewPipeline([]Predictor{broken, working}, nil, testLogger())
	got, err := p.Extract(context.Background(), "Ana López firmó")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got.Personas) != 1 {
		t.Errorf("personas = %d, want 1 from surviving backend", len(got.Personas))
	}
}

func TestPipelineAllBackendsDown(t *testing.T) {
	p := NewPipeline([]Predictor{
		&fakePredictor{name: "a", err: errors.New("refused")},
		&fakePredictor{name: "b", err: errors.New("timeout")},
	}, nil, testLogger())

	_, err := p.Extract(context.Background(), "algo de texto")
	if !errors.Is(err, common.ErrModelUnavailable) {
		t.Fatalf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestPipelineEmptyText(t *testing.T) {
	p := NewPipeline(nil, nil, testLogger())
	got, err := p.Extract(context.Background(), "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got == nil || got.Personas == nil || len(got.Personas) != 0 {
		t.Errorf("expected empty initialized sets, got %+v", got)
	}
}

func TestInvalidDateReclassified(t *testing.T) {
	text := "según el expediente EXP-2023-001 presentado"
	model := &fakePredictor{name: "model", spans: []RawSpan{
		{Label: "DATE", Text: "EXP-2023-001", Start: 21, End: 33, Confidence: 0.6},
	}}

	p := NewPipeline([]Predictor{model}, nil, testLogger())
	got, err := p.Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got.Fechas) != 0 {
		t.Errorf("fechas = %+v, want none", got.Fechas)
	}
	if len(got.ReferenciasLegales) != 1 || got.ReferenciasLegales[0].Codigo != "EXP-2023-001" {
		t.Errorf("referencias = %+v, want the code reclassified", got.ReferenciasLegales)
	}
}
