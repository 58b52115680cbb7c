package cache

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/legajo/docsync/internal/common"
	"github.com/legajo/docsync/internal/entity"
)

// fakeStore backs every repository interface with in-memory slices and
// counts reads, so fall-through behavior is observable.
type fakeStore struct {
	docs     []entity.Document
	versions []entity.Version
	analyzed []entity.AnalyzedContent
	spelling []entity.SpellingError

	reads int
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	f.reads++
	for i := range f.docs {
		if f.docs[i].ID == id {
			return &f.docs[i], nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeStore) GetByUniqueHash(_ context.Context, hash string) (*entity.Document, error) {
	f.reads++
	for i := range f.docs {
		if f.docs[i].UniqueHash == hash {
			return &f.docs[i], nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeStore) GetAll(context.Context) ([]entity.Document, error) {
	f.reads++
	return f.docs, nil
}

func (f *fakeStore) Create(_ context.Context, doc *entity.Document) error {
	f.docs = append(f.docs, *doc)
	return nil
}

type fakeVersions struct{ store *fakeStore }

func (f fakeVersions) GetByHash(_ context.Context, h string) (*entity.Version, error) {
	f.store.reads++
	for i := range f.store.versions {
		if f.store.versions[i].FileHash == h {
			return &f.store.versions[i], nil
		}
	}
	return nil, common.ErrNotFound
}

func (f fakeVersions) GetLatestByDocumentID(ctx context.Context, docID uuid.UUID) (*entity.Version, error) {
	all, _ := f.GetAllByDocumentID(ctx, docID)
	if len(all) == 0 {
		return nil, common.ErrNotFound
	}
	latest := all[0]
	for _, v := range all[1:] {
		if v.UpdatedAt.After(latest.UpdatedAt) {
			latest = v
		}
	}
	return &latest, nil
}

func (f fakeVersions) GetAllByDocumentID(_ context.Context, docID uuid.UUID) ([]entity.Version, error) {
	f.store.reads++
	var out []entity.Version
	for _, v := range f.store.versions {
		if v.DocumentID == docID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f fakeVersions) GetAll(context.Context) ([]entity.Version, error) {
	f.store.reads++
	return f.store.versions, nil
}

func (f fakeVersions) Add(_ context.Context, v *entity.Version) error {
	f.store.versions = append(f.store.versions, *v)
	return nil
}

type fakeAnalyzed struct{ store *fakeStore }

func (f fakeAnalyzed) GetByVersionID(_ context.Context, versionID uuid.UUID) (*entity.AnalyzedContent, error) {
	f.store.reads++
	for i := range f.store.analyzed {
		if f.store.analyzed[i].VersionID == versionID {
			return &f.store.analyzed[i], nil
		}
	}
	return nil, common.ErrNotFound
}

func (f fakeAnalyzed) Upsert(_ context.Context, ac *entity.AnalyzedContent) error {
	f.store.analyzed = append(f.store.analyzed, *ac)
	return nil
}

type fakeSpelling struct{ store *fakeStore }

func (f fakeSpelling) GetByVersionID(_ context.Context, versionID uuid.UUID) ([]entity.SpellingError, error) {
	f.store.reads++
	var out []entity.SpellingError
	for _, se := range f.store.spelling {
		if se.VersionID == versionID {
			out = append(out, se)
		}
	}
	return out, nil
}

func (f fakeSpelling) ReplaceForVersion(_ context.Context, versionID uuid.UUID, words []string) error {
	for _, w := range words {
		f.store.spelling = append(f.store.spelling, entity.SpellingError{
			ID: uuid.New(), VersionID: versionID, Word: w,
		})
	}
	return nil
}

type fakeSuggester struct{ calls int }

func (f *fakeSuggester) Suggestions(word string) []string {
	f.calls++
	return []string{word + "o"}
}

func newTestLayer(store *fakeStore) *Layer {
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewLayer(store, fakeVersions{store}, fakeAnalyzed{store}, fakeSpelling{store}, nil, logger)
}

func seedStore(n int) *fakeStore {
	store := &fakeStore{}
	for i := 0; i < n; i++ {
		doc := entity.Document{
			ID:         uuid.New(),
			Title:      "doc",
			UniqueHash: uuid.NewString(),
			CreatedAt:  time.Now(),
		}
		v := entity.Version{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			FileHash:   uuid.NewString(),
			UpdatedAt:  time.Now(),
		}
		store.docs = append(store.docs, doc)
		store.versions = append(store.versions, v)
		store.analyzed = append(store.analyzed, entity.AnalyzedContent{
			ID: uuid.New(), VersionID: v.ID, FullText: "texto",
		})
	}
	return store
}

func TestRebuildAll(t *testing.T) {
	store := seedStore(3)
	layer := newTestLayer(store)

	if err := layer.RebuildAll(context.Background()); err != nil {
		t.Fatalf("RebuildAll: %v", err)
	}

	stats := layer.Stats()
	if stats.Documents != 3 || stats.Versions != 3 || stats.Analyzed != 3 {
		t.Errorf("stats = %+v, want 3/3/3", stats)
	}

	// Warm reads must not hit the store.
	before := store.reads
	if _, err := layer.DocumentByID(context.Background(), store.docs[0].ID); err != nil {
		t.Fatalf("DocumentByID: %v", err)
	}
	if _, err := layer.VersionsByDocument(context.Background(), store.docs[0].ID); err != nil {
		t.Fatalf("VersionsByDocument: %v", err)
	}
	if store.reads != before {
		t.Errorf("warm reads hit the store %d times", store.reads-before)
	}
}

func TestRebuildAllRederivesSuggestions(t *testing.T) {
	store := seedStore(1)
	store.spelling = append(store.spelling,
		entity.SpellingError{ID: uuid.New(), VersionID: store.versions[0].ID, Word: "contrat"},
		entity.SpellingError{ID: uuid.New(), VersionID: store.versions[0].ID, Word: "contrat"},
	)
	sugg := &fakeSuggester{}
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, &slog.HandlerOptions{Level: slog.LevelError}))
	layer := NewLayer(store, fakeVersions{store}, fakeAnalyzed{store}, fakeSpelling{store}, sugg, logger)

	if err := layer.RebuildAll(context.Background()); err != nil {
		t.Fatalf("RebuildAll: %v", err)
	}
	if sugg.calls != 1 {
		t.Errorf("suggester called %d times, want once per distinct word", sugg.calls)
	}
	got, ok := layer.Suggestions("contrat")
	if !ok || len(got) != 1 || got[0] != "contrato" {
		t.Errorf("Suggestions = %v/%v, want rebuilt entry", got, ok)
	}
	if layer.Stats().Suggestions != 1 {
		t.Errorf("suggestion partition = %d, want 1", layer.Stats().Suggestions)
	}
}

func TestReadThroughPopulates(t *testing.T) {
	store := seedStore(1)
	layer := newTestLayer(store)

	doc := store.docs[0]
	if _, err := layer.DocumentByHash(context.Background(), doc.UniqueHash); err != nil {
		t.Fatalf("DocumentByHash: %v", err)
	}
	before := store.reads
	if _, err := layer.DocumentByHash(context.Background(), doc.UniqueHash); err != nil {
		t.Fatalf("DocumentByHash cached: %v", err)
	}
	if store.reads != before {
		t.Error("second read hit the store")
	}
}

func TestMissReturnsNotFound(t *testing.T) {
	layer := newTestLayer(&fakeStore{})
	if _, err := layer.DocumentByHash(context.Background(), "no-such"); err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestWriteThrough(t *testing.T) {
	store := &fakeStore{}
	layer := newTestLayer(store)

	doc := entity.Document{ID: uuid.New(), UniqueHash: "h1"}
	layer.PutDocument(doc)

	// Cache answers without the store having the row at all.
	got, err := layer.DocumentByHash(context.Background(), "h1")
	if err != nil {
		t.Fatalf("DocumentByHash: %v", err)
	}
	if got.ID != doc.ID {
		t.Errorf("got %v, want %v", got.ID, doc.ID)
	}

	v := entity.Version{ID: uuid.New(), DocumentID: doc.ID, UpdatedAt: time.Now()}
	layer.PutVersion(v)
	latest, err := layer.LatestVersion(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("LatestVersion: %v", err)
	}
	if latest.ID != v.ID {
		t.Error("latest version does not match write-through")
	}
}

func TestSuggestionsPartition(t *testing.T) {
	layer := newTestLayer(&fakeStore{})

	if _, ok := layer.Suggestions("contrat"); ok {
		t.Fatal("unexpected hit on empty partition")
	}
	layer.PutSuggestions("contrat", []string{"contrato"})
	got, ok := layer.Suggestions("contrat")
	if !ok || len(got) != 1 || got[0] != "contrato" {
		t.Errorf("Suggestions = %v/%v", got, ok)
	}
	if layer.Stats().Suggestions != 1 {
		t.Error("stats do not count suggestion entries")
	}
}
