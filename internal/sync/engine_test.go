package sync

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/legajo/docsync/internal/cache"
	"github.com/legajo/docsync/internal/entity"
	"github.com/legajo/docsync/internal/repository"
	"github.com/legajo/docsync/internal/storage"
)

type fakeMetadata struct {
	failFor string
}

func (f fakeMetadata) Extract(path string) (entity.Metadata, error) {
	if f.failFor != "" && strings.Contains(path, f.failFor) {
		return entity.Metadata{}, errors.New("metadata unreadable")
	}
	return entity.Metadata{
		Title:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Author:  "María López",
		Created: "2023-03-15 09:30:45",
		SizeMB:  0.01,
	}, nil
}

type fakeText struct{}

func (fakeText) Extract(_ context.Context, path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type fakeEntities struct{}

func (fakeEntities) Extract(_ context.Context, text string) (*entity.Entities, error) {
	out := entity.NewEntities()
	if strings.Contains(text, "audiencia") {
		out.Fechas = append(out.Fechas,
			entity.DateEntity{Fecha: "2023-06-01", Evento: "audiencia preliminar", IsValid: true},
			entity.DateEntity{Fecha: "2023-07-15", IsValid: true},
			entity.DateEntity{Fecha: "fecha_invalida", IsValid: false},
		)
	}
	return &out, nil
}

type fakeSpell struct{}

func (fakeSpell) Check(text string) []string {
	if strings.Contains(text, "contracto") {
		return []string{"contracto"}
	}
	return nil
}

type testEnv struct {
	engine   *Engine
	docs     repository.DocumentRepository
	versions repository.VersionRepository
	calendar repository.CalendarRepository
	spelling repository.SpellingErrorRepository
	analyzed repository.AnalyzedContentRepository
	root     string
}

func newTestEnv(t *testing.T, failFor string) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, &slog.HandlerOptions{Level: slog.LevelError}))

	dir := t.TempDir()
	db, err := repository.Open(filepath.Join(dir, "test.db"), time.Second, logger)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	docs := repository.NewDocumentRepository(db, logger)
	versions := repository.NewVersionRepository(db, logger)
	authors := repository.NewAuthorRepository(db, logger)
	analyzed := repository.NewAnalyzedContentRepository(db, logger)
	spelling := repository.NewSpellingErrorRepository(db, logger)
	calendar := repository.NewCalendarRepository(db, logger)

	engine := NewEngine(Config{
		Documents: docs,
		Versions:  versions,
		Authors:   authors,
		Analyzed:  analyzed,
		Spelling:  spelling,
		Calendar:  calendar,
		Metadata:  fakeMetadata{failFor: failFor},
		Text:      fakeText{},
		Entities:  fakeEntities{},
		Spell:     fakeSpell{},
		Copier:    storage.NewCopier(filepath.Join(dir, "managed"), logger),
		Cache:     cache.NewLayer(docs, versions, analyzed, spelling, nil, logger),
		Logger:    logger,
	})

	root := filepath.Join(dir, "incoming")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	return &testEnv{
		engine:   engine,
		docs:     docs,
		versions: versions,
		calendar: calendar,
		spelling: spelling,
		analyzed: analyzed,
		root:     root,
	}
}

func (e *testEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.root, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunRegistersNewDocument(t *testing.T) {
	env := newTestEnv(t, "")
	env.write(t, "contrato.pdf", "contracto con audiencia programada")

	res, err := env.engine.Run(context.Background(), env.root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Success || res.Stats.Created != 1 || res.Stats.Failed != 0 {
		t.Fatalf("result = %+v", res)
	}

	ctx := context.Background()
	docs, err := env.docs.GetAll(ctx)
	if err != nil || len(docs) != 1 {
		t.Fatalf("documents = %d, err %v", len(docs), err)
	}
	doc := docs[0]
	if doc.Title != "contrato" || doc.Type != "PDF" {
		t.Errorf("document = %+v", doc)
	}

	versions, err := env.versions.GetAllByDocumentID(ctx, doc.ID)
	if err != nil || len(versions) != 1 {
		t.Fatalf("versions = %d, err %v", len(versions), err)
	}
	v := versions[0]
	if v.AuthorID == nil {
		t.Error("version has no author")
	}
	if !strings.HasPrefix(v.VersionTag, "v") {
		t.Errorf("version tag = %q", v.VersionTag)
	}
	if _, err := os.Stat(v.FilePath); err != nil {
		t.Errorf("managed copy missing: %v", err)
	}

	ac, err := env.analyzed.GetByVersionID(ctx, v.ID)
	if err != nil {
		t.Fatalf("analyzed content: %v", err)
	}
	if !strings.Contains(ac.FullText, "audiencia") {
		t.Error("analyzed content missing extracted text")
	}

	spelling, err := env.spelling.GetByVersionID(ctx, v.ID)
	if err != nil || len(spelling) != 1 || spelling[0].Word != "contracto" {
		t.Errorf("spelling = %+v, err %v", spelling, err)
	}

	// Only the valid dates produce calendar events: the extractor's
	// description when it gave one, the document-derived placeholder
	// otherwise.
	events, err := env.calendar.GetByDocumentID(ctx, doc.ID)
	if err != nil || len(events) != 2 {
		t.Fatalf("calendar events = %d, err %v", len(events), err)
	}
	byDate := map[string]string{}
	for _, ev := range events {
		byDate[ev.Date] = ev.Event
	}
	if byDate["2023-06-01"] != "audiencia preliminar" {
		t.Errorf("event = %q, want extractor description kept", byDate["2023-06-01"])
	}
	if byDate["2023-07-15"] != "Evento generado automáticamente: contrato" {
		t.Errorf("event = %q, want generated placeholder", byDate["2023-07-15"])
	}
}

func TestRunUnchangedIsIdempotent(t *testing.T) {
	env := newTestEnv(t, "")
	env.write(t, "demanda.pdf", "texto estable")

	if _, err := env.engine.Run(context.Background(), env.root); err != nil {
		t.Fatalf("first run: %v", err)
	}
	res, err := env.engine.Run(context.Background(), env.root)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Stats.Unchanged != 1 || res.Stats.Created != 0 || res.Stats.Updated != 0 {
		t.Fatalf("stats = %+v, want single unchanged", res.Stats)
	}

	docs, _ := env.docs.GetAll(context.Background())
	if len(docs) != 1 {
		t.Errorf("documents = %d after re-run", len(docs))
	}
	versions, _ := env.versions.GetAllByDocumentID(context.Background(), docs[0].ID)
	if len(versions) != 1 {
		t.Errorf("versions = %d after re-run", len(versions))
	}
}

func TestRunSkipsManagedTree(t *testing.T) {
	env := newTestEnv(t, "")
	env.write(t, "demanda.pdf", "texto estable")

	// Rooting the walk above the managed copy tree must not ingest the
	// copies the engine itself produced.
	parent := filepath.Dir(env.root)
	if _, err := env.engine.Run(context.Background(), parent); err != nil {
		t.Fatalf("first run: %v", err)
	}
	res, err := env.engine.Run(context.Background(), parent)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Stats.Unchanged != 1 || res.Stats.Created != 0 {
		t.Fatalf("stats = %+v, want single unchanged", res.Stats)
	}

	docs, _ := env.docs.GetAll(context.Background())
	if len(docs) != 1 {
		t.Fatalf("documents = %d, want the managed copies skipped", len(docs))
	}
	versions, _ := env.versions.GetAllByDocumentID(context.Background(), docs[0].ID)
	if len(versions) != 1 {
		t.Errorf("versions = %d after re-run over the parent", len(versions))
	}
}

func TestRunContentChangeAddsVersion(t *testing.T) {
	env := newTestEnv(t, "")
	path := env.write(t, "poder.pdf", "primera redacción")

	if _, err := env.engine.Run(context.Background(), env.root); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := os.WriteFile(path, []byte("segunda redacción corregida"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := env.engine.Run(context.Background(), env.root)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Stats.Updated != 1 || res.Stats.Created != 0 {
		t.Fatalf("stats = %+v, want single update", res.Stats)
	}

	docs, _ := env.docs.GetAll(context.Background())
	if len(docs) != 1 {
		t.Fatalf("documents = %d, want same logical document", len(docs))
	}
	versions, _ := env.versions.GetAllByDocumentID(context.Background(), docs[0].ID)
	if len(versions) != 2 {
		t.Errorf("versions = %d, want 2", len(versions))
	}
}

func TestRunSkipsUnsupportedAndHidden(t *testing.T) {
	env := newTestEnv(t, "")
	env.write(t, "notas.txt", "no es un documento")
	env.write(t, ".oculto.pdf", "escondido")

	res, err := env.engine.Run(context.Background(), env.root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stats.Scanned != 0 {
		t.Errorf("scanned = %d, want 0", res.Stats.Scanned)
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	env := newTestEnv(t, "corrupto")
	env.write(t, "corrupto.pdf", "ilegible")
	env.write(t, "sano.pdf", "documento legible")

	res, err := env.engine.Run(context.Background(), env.root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stats.Failed != 1 || res.Stats.Created != 1 {
		t.Fatalf("stats = %+v, want one failure and one created", res.Stats)
	}
	if res.Success {
		t.Error("result marked success despite failures")
	}
}
